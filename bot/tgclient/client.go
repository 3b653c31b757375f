// Package tgclient adapts a telebot bot to the dispatcher's Client. Every
// call runs through the per-chat sender queue and waits for its result.
package tgclient

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/m3rciful/whoisbot/bot/dispatch"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// ErrNotUser is returned when a username belongs to a group or channel.
var ErrNotUser = errors.New("tgclient: username is not a user account")

// API is the subset of *tele.Bot used by the client.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
	ProfilePhotosOf(user *tele.User) ([]tele.Photo, error)
	ChatByUsername(name string) (*tele.Chat, error)
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
	Len(chat *tele.Chat) (int, error)
}

// Client implements dispatch.Client.
type Client struct {
	api   API
	queue *sender.Dispatcher
}

var _ dispatch.Client = (*Client)(nil)

// New returns a client. A nil queue calls the API directly.
func New(api API, queue *sender.Dispatcher) *Client {
	return &Client{api: api, queue: queue}
}

func (c *Client) do(ctx context.Context, chatID int64, action, endpoint string, run func() error) error {
	if c.queue == nil {
		return run()
	}
	return c.queue.Do(ctx, chatID, action, endpoint, run)
}

func (c *Client) Send(ctx context.Context, chatID int64, text string, opts *tele.SendOptions) error {
	return c.do(ctx, chatID, "send.text", "sendMessage", func() error {
		_, err := c.api.Send(tele.ChatID(chatID), text, sendOpts(opts))
		return err
	})
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo *tele.Photo, opts *tele.SendOptions) error {
	return c.do(ctx, chatID, "send.photo", "sendPhoto", func() error {
		_, err := c.api.Send(tele.ChatID(chatID), photo, sendOpts(opts))
		return err
	})
}

func (c *Client) Edit(ctx context.Context, ref dispatch.MessageRef, text string, opts *tele.SendOptions) error {
	return c.do(ctx, ref.ChatID, "edit.text", "editMessageText", func() error {
		_, err := c.api.Edit(stored(ref), text, sendOpts(opts))
		return err
	})
}

func (c *Client) Delete(ctx context.Context, ref dispatch.MessageRef) error {
	return c.do(ctx, ref.ChatID, "delete", "deleteMessage", func() error {
		return c.api.Delete(stored(ref))
	})
}

// Respond acknowledges a callback query without a notification.
func (c *Client) Respond(ctx context.Context, cb *tele.Callback) error {
	var chatID int64
	if cb.Sender != nil {
		chatID = cb.Sender.ID
	}
	return c.do(ctx, chatID, "callback.answer", "answerCallbackQuery", func() error {
		return c.api.Respond(cb, &tele.CallbackResponse{})
	})
}

func (c *Client) ProfilePhoto(ctx context.Context, userID int64) (*tele.Photo, error) {
	var photo *tele.Photo
	err := c.do(ctx, userID, "lookup.photo", "getUserProfilePhotos", func() error {
		photos, err := c.api.ProfilePhotosOf(&tele.User{ID: userID})
		if err != nil {
			return err
		}
		if len(photos) > 0 {
			p := photos[0]
			photo = &tele.Photo{File: p.File}
		}
		return nil
	})
	return photo, err
}

func (c *Client) ResolveUser(ctx context.Context, username string) (*tele.User, error) {
	name := "@" + strings.TrimPrefix(strings.TrimSpace(username), "@")
	var user *tele.User
	err := c.do(ctx, 0, "lookup.user", "getChat", func() error {
		chat, err := c.api.ChatByUsername(name)
		if err != nil {
			return err
		}
		if chat.Type != tele.ChatPrivate {
			return ErrNotUser
		}
		user = &tele.User{
			ID:        chat.ID,
			FirstName: chat.FirstName,
			LastName:  chat.LastName,
			Username:  chat.Username,
		}
		return nil
	})
	return user, err
}

func (c *Client) ChatMember(ctx context.Context, chatID, userID int64) (tele.MemberStatus, error) {
	var status tele.MemberStatus
	err := c.do(ctx, chatID, "lookup.member", "getChatMember", func() error {
		m, err := c.api.ChatMemberOf(tele.ChatID(chatID), &tele.User{ID: userID})
		if err != nil {
			return err
		}
		status = m.Role
		return nil
	})
	return status, err
}

func (c *Client) MemberCount(ctx context.Context, chatID int64) (int, error) {
	var n int
	err := c.do(ctx, chatID, "lookup.members", "getChatMemberCount", func() error {
		count, err := c.api.Len(&tele.Chat{ID: chatID})
		n = count
		return err
	})
	return n, err
}

func stored(ref dispatch.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
}

func sendOpts(opts *tele.SendOptions) *tele.SendOptions {
	if opts == nil {
		return &tele.SendOptions{}
	}
	return opts
}
