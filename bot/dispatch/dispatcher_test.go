package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/moderation"
	"github.com/m3rciful/whoisbot/core/telegram/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

var (
	alice   = &tele.User{ID: 100, FirstName: "Alice", Username: "alice"}
	private = &tele.Chat{ID: 100, Type: tele.ChatPrivate}
	group   = &tele.Chat{ID: -1001, Type: tele.ChatSuperGroup, Title: "Gophers"}
)

type harness struct {
	d      *Dispatcher
	client *fakeClient
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{client: &fakeClient{}, now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	st := NewState(60*time.Second, 5)
	machine := menu.New(menu.Options{BotUsername: "whois_bot"})
	h.d = New(h.client, st, moderation.MustNew(nil), machine, Options{
		BotUsername: "@whois_bot",
		Version:     "1.0.0",
		Now:         func() time.Time { return h.now },
	})
	return h
}

func (h *harness) message(t *testing.T, id int, chat *tele.Chat, from *tele.User, text string) {
	t.Helper()
	upd := &tele.Update{Message: &tele.Message{ID: id, Chat: chat, Sender: from, Text: text}}
	require.NoError(t, h.d.Handle(context.Background(), upd))
}

func (h *harness) press(t *testing.T, msgID int, chat *tele.Chat, from *tele.User, data string) {
	t.Helper()
	upd := &tele.Update{Callback: &tele.Callback{
		ID:      "cb",
		Sender:  from,
		Message: &tele.Message{ID: msgID, Chat: chat},
		Data:    data,
	}}
	require.NoError(t, h.d.Handle(context.Background(), upd))
}

func TestStartAttributesReferral(t *testing.T) {
	h := newHarness(t)

	h.message(t, 10, private, alice, "/start 555")

	st := h.d.State()
	assert.Equal(t, 1, st.Stats.SnapshotGlobal().DistinctUsers)
	inviter, ok := st.Referrals.Lookup(100)
	require.True(t, ok)
	assert.EqualValues(t, 555, inviter)

	last := h.client.last()
	assert.Equal(t, menu.TextMain, last.Text)
	require.NotNil(t, last.Opts.ReplyTo)
	assert.Equal(t, 10, last.Opts.ReplyTo.ID)
	assert.NotNil(t, last.Opts.ReplyMarkup)

	sess, ok := st.Sessions.Get(100)
	require.True(t, ok)
	assert.Equal(t, 10, sess.StartMessageID)
	assert.Equal(t, menu.Main, sess.Screen)
}

func TestStartIgnoresNonNumericPayload(t *testing.T) {
	h := newHarness(t)
	h.message(t, 10, private, alice, "/start hello")

	_, ok := h.d.State().Referrals.Lookup(100)
	assert.False(t, ok)
	assert.Equal(t, menu.TextMain, h.client.last().Text)
}

func TestCompareFailsWithSingleError(t *testing.T) {
	h := newHarness(t)
	h.client.On("ResolveUser", "@a").Return(&tele.User{ID: 1, Username: "a"}, nil)
	h.client.On("ResolveUser", "@b").Return(nil, errors.New("telegram: chat not found (400)"))

	h.message(t, 20, group, alice, "/compare @a @b")

	msgs := h.client.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, textCompareFailed, msgs[0].Text)
	assert.Zero(t, h.d.State().Stats.SnapshotGroup(group.ID).Compare)
}

func TestCompareRecordsToolUse(t *testing.T) {
	h := newHarness(t)
	h.client.On("ResolveUser", "@a").Return(&tele.User{ID: 1, Username: "a"}, nil)
	h.client.On("ResolveUser", "@b").Return(&tele.User{ID: 2, Username: "b"}, nil)

	h.message(t, 20, group, alice, "/compare@whois_bot @a @b")

	last := h.client.last()
	assert.Contains(t, last.Text, "`@a`")
	assert.Contains(t, last.Text, "`@b`")
	assert.Equal(t, 1, h.d.State().Stats.SnapshotGroup(group.ID).Compare)
}

func TestFindValidatesUsername(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, private, alice, "/find alice")
	assert.Equal(t, textFindUsage, h.client.last().Text)
	h.client.AssertNotCalled(t, "ResolveUser", "alice")

	h.message(t, 2, private, alice, "/find @")
	assert.Equal(t, textFindUsage, h.client.last().Text)
}

func TestShortHandlesReachResolution(t *testing.T) {
	h := newHarness(t)
	h.client.On("ResolveUser", "@x").Return(nil, errors.New("chat not found"))

	h.message(t, 1, group, alice, "/find @x")

	h.client.AssertCalled(t, "ResolveUser", "@x")
	assert.Equal(t, textNotFound, h.client.last().Text)
}

func TestFindNotFound(t *testing.T) {
	h := newHarness(t)
	h.client.On("ResolveUser", "@ghost").Return(nil, errors.New("chat not found"))

	h.message(t, 1, group, alice, "/find @ghost")

	assert.Equal(t, textNotFound, h.client.last().Text)
	assert.Zero(t, h.d.State().Stats.SnapshotGroup(group.ID).Find)
}

func TestFindSendsPhotoCard(t *testing.T) {
	h := newHarness(t)
	target := &tele.User{ID: 42, FirstName: "Bob", Username: "bob"}
	h.client.On("ResolveUser", "@bob").Return(target, nil)
	h.client.On("ProfilePhoto", int64(42)).Return(&tele.Photo{File: tele.File{FileID: "p1"}}, nil)

	h.message(t, 1, group, alice, "/find @bob")

	last := h.client.last()
	assert.True(t, last.Photo)
	assert.Contains(t, last.Text, "`42`")
	assert.Equal(t, 1, h.d.State().Stats.SnapshotGroup(group.ID).Find)
}

func TestGatedCommandsShareWindow(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		h.message(t, i+1, private, alice, "/find")
		assert.Equal(t, textFindUsage, h.client.last().Text)
	}
	h.message(t, 6, private, alice, "/compare")
	assert.Equal(t, textRateLimited, h.client.last().Text)

	h.now = h.now.Add(61 * time.Second)
	h.message(t, 7, private, alice, "/find")
	assert.Equal(t, textFindUsage, h.client.last().Text)
}

func TestWhoisIsNotGated(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 8; i++ {
		h.message(t, i+1, group, alice, "/whois")
	}
	assert.Equal(t, 8, h.d.State().Stats.SnapshotGroup(group.ID).Whois)
	assert.NotEqual(t, textRateLimited, h.client.last().Text)
}

func TestWhoisTargetsRepliedUser(t *testing.T) {
	h := newHarness(t)
	h.client.On("ChatMember", group.ID, int64(7)).Return(tele.Administrator, nil)
	bob := &tele.User{ID: 7, FirstName: "Bob"}

	upd := &tele.Update{Message: &tele.Message{
		ID: 30, Chat: group, Sender: alice, Text: "كشف",
		ReplyTo: &tele.Message{ID: 29, Chat: group, Sender: bob},
	}}
	require.NoError(t, h.d.Handle(context.Background(), upd))

	last := h.client.last()
	assert.Contains(t, last.Text, "`7`")
	assert.Contains(t, last.Text, "`مشرف`")
	assert.Equal(t, 30, last.Opts.ReplyTo.ID)
}

func TestTriggerIgnoredInPrivate(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, private, alice, "كشف")
	assert.Empty(t, h.client.messages())
}

func TestBannedTextIsDeleted(t *testing.T) {
	h := newHarness(t)
	h.message(t, 5, group, alice, "انضموا إلى t.me/spam")

	assert.Equal(t, []MessageRef{{ChatID: group.ID, MessageID: 5}}, h.client.deletes)
	assert.Empty(t, h.client.messages())
}

func TestPrivateMediaIsDeleted(t *testing.T) {
	h := newHarness(t)
	upd := &tele.Update{Message: &tele.Message{ID: 3, Chat: private, Sender: alice, Photo: &tele.Photo{}}}
	require.NoError(t, h.d.Handle(context.Background(), upd))
	assert.Len(t, h.client.deletes, 1)

	upd = &tele.Update{Message: &tele.Message{ID: 4, Chat: group, Sender: alice, Video: &tele.Video{}}}
	require.NoError(t, h.d.Handle(context.Background(), upd))
	assert.Len(t, h.client.deletes, 1)
}

func TestMembershipTracksGroups(t *testing.T) {
	h := newHarness(t)
	member := func(role tele.MemberStatus, chat *tele.Chat) *tele.Update {
		return &tele.Update{MyChatMember: &tele.ChatMemberUpdate{
			Chat:          chat,
			Sender:        alice,
			NewChatMember: &tele.ChatMember{Role: role},
		}}
	}
	ctx := context.Background()
	st := h.d.State()

	require.NoError(t, h.d.Handle(ctx, member(tele.Member, group)))
	assert.Equal(t, 1, st.Stats.ActiveGroups())

	require.NoError(t, h.d.Handle(ctx, member(tele.Kicked, group)))
	assert.Equal(t, 0, st.Stats.ActiveGroups())

	require.NoError(t, h.d.Handle(ctx, member(tele.Kicked, group)))
	assert.Equal(t, 0, st.Stats.ActiveGroups())

	require.NoError(t, h.d.Handle(ctx, member(tele.Member, private)))
	assert.Equal(t, 0, st.Stats.ActiveGroups())
}

func TestGroupOnlyCommands(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, private, alice, "/groupinfo")
	assert.Equal(t, textGroupOnly, h.client.last().Text)

	h.client.On("MemberCount", group.ID).Return(12, nil)
	h.message(t, 2, group, alice, "/groupinfo")
	assert.Contains(t, h.client.last().Text, "`12`")

	h.message(t, 3, group, alice, "/groupcommands")
	assert.Equal(t, textGroupCommands, h.client.last().Text)
}

func TestBotInfo(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, private, alice, "/botinfo")
	last := h.client.last()
	assert.Contains(t, last.Text, "`@whois_bot`")
	assert.Contains(t, last.Text, "`1.0.0`")
}

func TestUnknownCommandIsText(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, private, alice, "/nope")
	h.message(t, 2, group, alice, "/find@other_bot @x")
	assert.Empty(t, h.client.messages())
}

func TestRevealPhoneOutsideConfirmationAsksAgain(t *testing.T) {
	h := newHarness(t)
	h.message(t, 10, private, alice, "/start")

	h.press(t, 11, private, alice, string(menu.ActionRevealPhoneYes))

	assert.Equal(t, menu.TextPhoneConfirm, h.client.last().Text)
	assert.Empty(t, h.client.deletes)
	sess, _ := h.d.State().Sessions.Get(100)
	assert.Equal(t, menu.KindPhoneConfirm, sess.Screen.Kind)
}

func TestPhoneCaptureFlow(t *testing.T) {
	h := newHarness(t)
	h.message(t, 10, private, alice, "/start")

	h.press(t, 11, private, alice, string(menu.ActionTools))
	h.press(t, 11, private, alice, string(menu.ActionToolsPhone))
	assert.Len(t, h.client.edits, 2)

	h.press(t, 11, private, alice, string(menu.ActionRevealPhoneYes))
	assert.Equal(t, []MessageRef{{ChatID: 100, MessageID: 11}}, h.client.deletes)
	prompt := h.client.last()
	assert.Equal(t, menu.TextPhoneCapture, prompt.Text)
	require.NotNil(t, prompt.Opts.ReplyTo)
	assert.Equal(t, 10, prompt.Opts.ReplyTo.ID)

	foreign := &tele.Update{Message: &tele.Message{ID: 12, Chat: private, Sender: alice,
		Contact: &tele.Contact{PhoneNumber: "111", UserID: 999}}}
	require.NoError(t, h.d.Handle(context.Background(), foreign))
	assert.Equal(t, textOwnContactOnly, h.client.last().Text)

	own := &tele.Update{Message: &tele.Message{ID: 13, Chat: private, Sender: alice,
		Contact: &tele.Contact{PhoneNumber: "9647700000000", UserID: 100}}}
	require.NoError(t, h.d.Handle(context.Background(), own))
	card := h.client.last()
	assert.Contains(t, card.Text, "`+9647700000000`")
	assert.True(t, card.Opts.ReplyMarkup.RemoveKeyboard)

	sess, _ := h.d.State().Sessions.Get(100)
	assert.Equal(t, menu.Main, sess.Screen)
}

func TestContactOutsideCaptureIgnored(t *testing.T) {
	h := newHarness(t)
	upd := &tele.Update{Message: &tele.Message{ID: 1, Chat: private, Sender: alice,
		Contact: &tele.Contact{PhoneNumber: "1", UserID: 100}}}
	require.NoError(t, h.d.Handle(context.Background(), upd))
	assert.Empty(t, h.client.messages())
}

func TestDetailsThenEditUpgradesToResend(t *testing.T) {
	h := newHarness(t)
	h.message(t, 10, private, alice, "/start")

	h.press(t, 11, private, alice, string(menu.ActionDetails))
	assert.Len(t, h.client.deletes, 1)
	assert.Contains(t, h.client.last().Text, "`100`")

	h.press(t, 12, private, alice, string(menu.ActionProfile))
	assert.Len(t, h.client.deletes, 2)
	assert.Empty(t, h.client.edits)
	assert.Contains(t, h.client.last().Text, "https://t.me/alice")
}

func TestStatsCallbackPerChat(t *testing.T) {
	h := newHarness(t)
	h.message(t, 1, group, alice, "/whois")

	h.press(t, 2, group, alice, string(menu.ActionStats))
	assert.Contains(t, h.client.last().Text, "`/whois`:* 1")

	h.press(t, 3, private, alice, string(menu.ActionStats))
	assert.Contains(t, h.client.last().Text, "إجمالي المستخدمين:* 1")
}

func TestReferralCallback(t *testing.T) {
	h := newHarness(t)
	h.message(t, 10, private, alice, "/start 7")
	h.press(t, 11, private, alice, string(menu.ActionToolsReferral))

	text := h.client.last().Text
	assert.Contains(t, text, `https://t.me/whois\_bot?start=100`)
	assert.Contains(t, text, "`7`")
}

func TestUnknownCallbackIsAnswered(t *testing.T) {
	h := newHarness(t)
	h.press(t, 1, private, alice, "bogus")

	assert.Equal(t, 1, h.client.answers)
	assert.Empty(t, h.client.messages())
	assert.Equal(t, 1, h.d.State().Stats.Interactions(100))
}

func TestEditFailureFallsBackToResend(t *testing.T) {
	h := newHarness(t)
	h.client.editErr = errors.New("telegram: there is no text in the message to edit (400)")

	h.press(t, 5, private, alice, string(menu.ActionTools))

	assert.Len(t, h.client.deletes, 1)
	assert.Equal(t, menu.TextTools, h.client.last().Text)
}

func TestUpdatesOfOneUserApplyInArrivalOrder(t *testing.T) {
	h := newHarness(t)
	var ticks atomic.Int64
	h.d.now = func() time.Time {
		return h.now.Add(time.Duration(ticks.Add(1)) * 2 * time.Minute)
	}

	bot, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	bot.Handle("/start", func(c tele.Context) error {
		upd := c.Update()
		return h.d.Submit(context.Background(), &upd)
	})

	bob := &tele.User{ID: 200, FirstName: "Bob"}
	bobChat := &tele.Chat{ID: 200, Type: tele.ChatPrivate}
	const n = 300
	for i := 1; i <= n; i++ {
		bot.ProcessUpdate(tele.Update{ID: 2 * i, Message: &tele.Message{ID: i, Chat: private, Sender: alice, Text: "/start"}})
		bot.ProcessUpdate(tele.Update{ID: 2*i + 1, Message: &tele.Message{ID: 1000 + i, Chat: bobChat, Sender: bob, Text: "/start"}})
	}
	h.d.Drain()

	sess, ok := h.d.State().Sessions.Get(alice.ID)
	require.True(t, ok)
	assert.Equal(t, n, sess.StartMessageID, "anchor is the last /start")
	sess, ok = h.d.State().Sessions.Get(bob.ID)
	require.True(t, ok)
	assert.Equal(t, 1000+n, sess.StartMessageID)

	var replies []int
	for _, m := range h.client.messages() {
		if m.ChatID == private.ID {
			require.NotNil(t, m.Opts.ReplyTo)
			replies = append(replies, m.Opts.ReplyTo.ID)
		}
	}
	require.Len(t, replies, n)
	assert.IsIncreasing(t, replies)
}

func TestSubmitSkipsUpdatesWithoutSender(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.d.Submit(context.Background(), &tele.Update{Message: &tele.Message{ID: 1, Chat: group, Text: "hi"}}))
	h.d.Drain()

	assert.Empty(t, h.client.messages())
	assert.ErrorIs(t, h.d.Submit(context.Background(), &tele.Update{Message: &tele.Message{ID: 2, Chat: private, Sender: alice, Text: "/start"}}), state.ErrMailboxClosed)
}
