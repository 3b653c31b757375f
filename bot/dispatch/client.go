package dispatch

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// MessageRef points at a sent message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// RefOf returns the reference of msg; ok is false for inline messages.
func RefOf(msg *tele.Message) (MessageRef, bool) {
	if msg == nil || msg.Chat == nil {
		return MessageRef{}, false
	}
	return MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}, true
}

// Client is the messaging platform as seen by the dispatcher.
type Client interface {
	Send(ctx context.Context, chatID int64, text string, opts *tele.SendOptions) error
	SendPhoto(ctx context.Context, chatID int64, photo *tele.Photo, opts *tele.SendOptions) error
	Edit(ctx context.Context, ref MessageRef, text string, opts *tele.SendOptions) error
	Delete(ctx context.Context, ref MessageRef) error
	Respond(ctx context.Context, cb *tele.Callback) error

	// ProfilePhoto returns the newest profile photo of userID, nil when there is none.
	ProfilePhoto(ctx context.Context, userID int64) (*tele.Photo, error)
	// ResolveUser looks up a public account by "@username".
	ResolveUser(ctx context.Context, username string) (*tele.User, error)
	ChatMember(ctx context.Context, chatID, userID int64) (tele.MemberStatus, error)
	MemberCount(ctx context.Context, chatID int64) (int, error)
}
