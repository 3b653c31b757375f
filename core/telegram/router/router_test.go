package router

import (
	"errors"
	"fmt"
	"testing"

	tg "github.com/m3rciful/whoisbot/core/telegram"
	"github.com/m3rciful/whoisbot/core/telegram/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func TestCommandRoutesIncludeAliases(t *testing.T) {
	reg := tg.NewRegistry()
	var calls int
	h := func(tele.Context) error { calls++; return nil }
	reg.RegisterCommand("/whois", commands.Command{Handler: h, Description: "whois", Aliases: []string{"id"}})

	routes := CommandRoutes(reg)
	require.Len(t, routes, 2)

	endpoints := []any{routes[0].Endpoint, routes[1].Endpoint}
	assert.ElementsMatch(t, []any{"/whois", "/id"}, endpoints)

	c := offlineBot(t).NewContext(tele.Update{ID: 1, Message: &tele.Message{Text: "/whois"}})
	require.NoError(t, routes[0].Handler(c))
	assert.Equal(t, 1, calls)
}

func TestMessageRoutesCoverKinds(t *testing.T) {
	var seen int
	routes := MessageRoutes(func(tele.Context) error { seen++; return nil })
	var endpoints []any
	for _, r := range routes {
		endpoints = append(endpoints, r.Endpoint)
	}
	assert.ElementsMatch(t, []any{tele.OnText, tele.OnContact, tele.OnPhoto, tele.OnVideo, tele.OnMyChatMember}, endpoints)

	c := offlineBot(t).NewContext(tele.Update{ID: 2, Message: &tele.Message{Text: "hi"}})
	require.NoError(t, routes[0].Handler(c))
	assert.Equal(t, 1, seen)
}

func TestCallbackRouteSkipsNonCallbacks(t *testing.T) {
	var seen int
	route := CallbackRoute(func(tele.Context) error { seen++; return nil })
	b := offlineBot(t)

	require.NoError(t, route.Handler(b.NewContext(tele.Update{ID: 3, Message: &tele.Message{}})))
	assert.Zero(t, seen)

	cb := &tele.Callback{ID: "x", Data: "tools", Sender: &tele.User{ID: 1}}
	require.NoError(t, route.Handler(b.NewContext(tele.Update{ID: 4, Callback: cb})))
	assert.Equal(t, 1, seen)
}

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "", deriveErrorCode(nil))
	assert.Equal(t, "NOT_FOUND", deriveErrorCode(fmt.Errorf("wrapped: %w", codedErr("not found"))))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("x")))
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "unknown", normalizeHandlerName(" "))
	assert.Equal(t, "group_info", normalizeHandlerName("/Group Info"))
}

type codedErr string

func (e codedErr) Error() string { return string(e) }
func (e codedErr) Code() string  { return string(e) }
