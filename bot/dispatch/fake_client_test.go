package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v4"
)

type sent struct {
	ChatID int64
	Text   string
	Photo  bool
	Opts   *tele.SendOptions
}

// fakeClient records outbound calls. Lookups go through the embedded mock.
type fakeClient struct {
	mock.Mock

	mu      sync.Mutex
	sent    []sent
	edits   []MessageRef
	deletes []MessageRef
	answers int
	editErr error
}

func (f *fakeClient) Send(_ context.Context, chatID int64, text string, opts *tele.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

func (f *fakeClient) SendPhoto(_ context.Context, chatID int64, photo *tele.Photo, opts *tele.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{ChatID: chatID, Text: photo.Caption, Photo: true, Opts: opts})
	return nil
}

func (f *fakeClient) Edit(_ context.Context, ref MessageRef, text string, opts *tele.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, ref)
	f.sent = append(f.sent, sent{ChatID: ref.ChatID, Text: text, Opts: opts})
	return nil
}

func (f *fakeClient) Delete(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, ref)
	return nil
}

func (f *fakeClient) Respond(context.Context, *tele.Callback) error {
	f.mu.Lock()
	f.answers++
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) ProfilePhoto(_ context.Context, userID int64) (*tele.Photo, error) {
	if !f.hasExpectation("ProfilePhoto") {
		return nil, nil
	}
	args := f.Called(userID)
	p, _ := args.Get(0).(*tele.Photo)
	return p, args.Error(1)
}

func (f *fakeClient) ResolveUser(_ context.Context, username string) (*tele.User, error) {
	args := f.Called(username)
	u, _ := args.Get(0).(*tele.User)
	return u, args.Error(1)
}

func (f *fakeClient) ChatMember(_ context.Context, chatID, userID int64) (tele.MemberStatus, error) {
	if !f.hasExpectation("ChatMember") {
		return "", errors.New("no member")
	}
	args := f.Called(chatID, userID)
	return args.Get(0).(tele.MemberStatus), args.Error(1)
}

func (f *fakeClient) MemberCount(_ context.Context, chatID int64) (int, error) {
	if !f.hasExpectation("MemberCount") {
		return 0, errors.New("no count")
	}
	args := f.Called(chatID)
	return args.Int(0), args.Error(1)
}

func (f *fakeClient) hasExpectation(method string) bool {
	for _, c := range f.ExpectedCalls {
		if c.Method == method {
			return true
		}
	}
	return false
}

func (f *fakeClient) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

func (f *fakeClient) last() sent {
	msgs := f.messages()
	if len(msgs) == 0 {
		return sent{}
	}
	return msgs[len(msgs)-1]
}
