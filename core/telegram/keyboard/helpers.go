package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button. Exactly one of Data or URL is used;
// URL wins when both are set.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

// Row groups buttons shown on one line.
func Row(buttons ...InlineBtn) []InlineBtn { return buttons }

// Action returns a callback button carrying data verbatim.
func Action(text, data string) InlineBtn {
	return InlineBtn{Text: text, Data: data}
}

// Link returns a URL button.
func Link(text, url string) InlineBtn {
	return InlineBtn{Text: text, URL: url}
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Callback data is sent raw (no telebot unique prefix) so a single
// OnCallback route can dispatch on it.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			ib := tele.InlineButton{Text: btn.Text}
			if btn.URL != "" {
				ib.URL = btn.URL
			} else {
				ib.Data = btn.Data
			}
			r = append(r, ib)
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// RemoveKeyboard returns a markup that hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ContactRequest returns a one-time reply keyboard with a single button
// asking Telegram to share the user's own phone contact.
func ContactRequest(label string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
		ReplyKeyboard: [][]tele.ReplyButton{
			{{Text: label, Contact: true}},
		},
	}
}
