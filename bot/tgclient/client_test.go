package tgclient

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/whoisbot/bot/dispatch"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeAPI struct {
	sends   []interface{}
	edited  tele.Editable
	deleted tele.Editable
	chats   map[string]*tele.Chat
	photos  []tele.Photo
	members int
	role    tele.MemberStatus
	err     error
}

func (f *fakeAPI) Send(_ tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.sends = append(f.sends, what)
	return &tele.Message{}, f.err
}

func (f *fakeAPI) Edit(msg tele.Editable, _ interface{}, _ ...interface{}) (*tele.Message, error) {
	f.edited = msg
	return &tele.Message{}, f.err
}

func (f *fakeAPI) Delete(msg tele.Editable) error {
	f.deleted = msg
	return f.err
}

func (f *fakeAPI) Respond(*tele.Callback, ...*tele.CallbackResponse) error { return f.err }

func (f *fakeAPI) ProfilePhotosOf(*tele.User) ([]tele.Photo, error) { return f.photos, f.err }

func (f *fakeAPI) ChatByUsername(name string) (*tele.Chat, error) {
	if c, ok := f.chats[name]; ok {
		return c, nil
	}
	return nil, errors.New("telegram: chat not found (400)")
}

func (f *fakeAPI) ChatMemberOf(_, _ tele.Recipient) (*tele.ChatMember, error) {
	return &tele.ChatMember{Role: f.role}, f.err
}

func (f *fakeAPI) Len(*tele.Chat) (int, error) { return f.members, f.err }

func TestSendGoesThroughQueue(t *testing.T) {
	api := &fakeAPI{}
	q := sender.NewDispatcher(sender.Options{Workers: 1, QueueSize: 4, RatePerSecond: 1000, Burst: 10})
	defer q.Close()
	c := New(api, q)

	require.NoError(t, c.Send(context.Background(), 1, "hi", nil))
	require.Len(t, api.sends, 1)
	assert.Equal(t, "hi", api.sends[0])

	api.err = errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	err := c.Send(context.Background(), 1, "again", nil)
	require.Error(t, err)
	assert.Equal(t, "forbidden", sender.Classify(err))
}

func TestEditAndDeleteUseStoredMessage(t *testing.T) {
	api := &fakeAPI{}
	c := New(api, nil)
	ref := dispatch.MessageRef{ChatID: -5, MessageID: 77}

	require.NoError(t, c.Edit(context.Background(), ref, "x", nil))
	require.NoError(t, c.Delete(context.Background(), ref))

	id, chat := api.edited.MessageSig()
	assert.Equal(t, "77", id)
	assert.EqualValues(t, -5, chat)
	id, _ = api.deleted.MessageSig()
	assert.Equal(t, "77", id)
}

func TestResolveUser(t *testing.T) {
	api := &fakeAPI{chats: map[string]*tele.Chat{
		"@bob":  {ID: 9, Type: tele.ChatPrivate, FirstName: "Bob", Username: "bob"},
		"@news": {ID: -100, Type: tele.ChatChannel, Username: "news"},
	}}
	c := New(api, nil)

	u, err := c.ResolveUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 9, u.ID)
	assert.Equal(t, "Bob", u.FirstName)

	_, err = c.ResolveUser(context.Background(), "@news")
	assert.ErrorIs(t, err, ErrNotUser)

	_, err = c.ResolveUser(context.Background(), "@ghost")
	assert.Error(t, err)
}

func TestLookups(t *testing.T) {
	api := &fakeAPI{members: 12, role: tele.Creator}
	c := New(api, nil)
	ctx := context.Background()

	p, err := c.ProfilePhoto(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p)

	api.photos = []tele.Photo{{File: tele.File{FileID: "newest"}}, {File: tele.File{FileID: "old"}}}
	p, err = c.ProfilePhoto(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "newest", p.FileID)

	n, err := c.MemberCount(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	role, err := c.ChatMember(ctx, -1, 1)
	require.NoError(t, err)
	assert.Equal(t, tele.Creator, role)
}
