package router

import (
	tg "github.com/m3rciful/whoisbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every inline button press to handler.
func CallbackRoute(handler tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler: func(c tele.Context) error {
			if c.Callback() == nil {
				return nil
			}
			return handleWithSummary(c, "callback", handler)
		},
	}
}
