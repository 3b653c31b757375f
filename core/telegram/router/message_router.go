package router

import (
	tg "github.com/m3rciful/whoisbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// MessageRoutes sends non-command messages and membership changes to handler.
// Text that is not a registered command, including unknown commands, arrives
// on OnText.
func MessageRoutes(handler tele.HandlerFunc) []tg.Route {
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: summarized("text", handler)},
		{Endpoint: tele.OnContact, Handler: summarized("contact", handler)},
		{Endpoint: tele.OnPhoto, Handler: summarized("media", handler)},
		{Endpoint: tele.OnVideo, Handler: summarized("media", handler)},
		{Endpoint: tele.OnMyChatMember, Handler: summarized("membership", handler)},
	}
}

func summarized(name string, handler tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return handleWithSummary(c, name, handler)
	}
}
