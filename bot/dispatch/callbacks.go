package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/whoisbot/bot/cards"
	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/stats"
	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/callbacks"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

func (d *Dispatcher) handleCallback(ctx context.Context, ev Event) error {
	cb := ev.Callback
	ctx = logger.WithHandler(ctx, "callback")
	if err := d.client.Respond(ctx, cb); err != nil {
		logger.Warn(ctx, component, "callback.respond.fail",
			slog.String("status", "skip"),
			slog.String("error_kind", sender.Classify(err)),
		)
	}
	if ev.Sender == nil {
		return nil
	}
	d.state.Stats.RecordInteraction(ev.Sender.ID)

	action := menu.Action(callbacks.Key(cb))
	sess, _ := d.state.Sessions.Get(ev.Sender.ID)
	before := sess.Screen
	if before.IsZero() {
		before = menu.Main
	}
	after, view, err := d.menu.Transition(before, action)
	if err != nil {
		logger.Warn(ctx, "menu", "callback.unknown",
			slog.String("status", "skip"),
			slog.String("action", string(action)),
		)
		return nil
	}
	d.state.Sessions.Update(ev.Sender.ID, func(s *Session) { s.Screen = after })
	logger.Debug(ctx, "menu", "menu.transition",
		slog.String("action", string(action)),
		slog.String("screen", after.String()),
		slog.String("mode", view.Mode.String()),
	)
	return d.render(ctx, ev, sess.StartMessageID, view)
}

// render replaces the menu message of cb with view.
func (d *Dispatcher) render(ctx context.Context, ev Event, anchor int, view menu.RenderSpec) error {
	cb := ev.Callback
	text := view.Text
	if view.Dynamic {
		text = d.dynamicText(ctx, ev, view)
	}
	opts := &tele.SendOptions{ParseMode: view.ParseMode, ReplyMarkup: view.Markup}

	ref, hasRef := RefOf(cb.Message)
	chatID := ev.Sender.ID
	if hasRef {
		chatID = ref.ChatID
	}

	if view.Mode == menu.ModeEdit && hasRef {
		err := d.client.Edit(ctx, ref, text, opts)
		if err == nil || notModified(err) {
			return nil
		}
		logger.Warn(ctx, component, "edit.fail",
			slog.String("status", "fail"),
			slog.String("error_kind", sender.Classify(err)),
			slog.String("err", sender.SanitizeError(err)),
		)
	}

	if hasRef {
		d.deleteBestEffort(ctx, cb.Message)
	}
	send := anchored(anchor)
	send.ParseMode = view.ParseMode
	send.ReplyMarkup = view.Markup
	if view.Screen.Kind == menu.KindDetails {
		return d.sendCard(ctx, chatID, text, ev.Sender.ID, send)
	}
	return d.client.Send(ctx, chatID, text, send)
}

// dynamicText fills screens that show live data.
func (d *Dispatcher) dynamicText(ctx context.Context, ev Event, view menu.RenderSpec) string {
	user := ev.Sender
	var chat *tele.Chat
	if ev.Callback.Message != nil {
		chat = ev.Callback.Message.Chat
	}
	inGroup := chat != nil && stats.IsGroup(chat.Type)

	switch view.Screen.Kind {
	case menu.KindDetails:
		return cards.Info(user, "")
	case menu.KindProfileLink:
		return cards.ProfileLink(user)
	case menu.KindStats:
		if inGroup {
			return cards.GroupStats(d.state.Stats.SnapshotGroup(chat.ID))
		}
		return cards.GlobalStats(d.state.Stats.SnapshotGlobal())
	case menu.KindGroupInfo:
		if inGroup {
			return d.groupInfoText(ctx, chat)
		}
	case menu.KindReferralInfo:
		inviter, ok := d.state.Referrals.Lookup(user.ID)
		return cards.Referral(d.menu.InviteURL(user.ID), inviter, ok, d.state.Referrals.CountInvited(user.ID))
	case menu.KindBotInfo:
		return cards.BotInfo(d.opts.BotUsername, d.opts.Version, d.opts.Commit, d.state.Stats.Uptime())
	}
	return view.Text
}

func notModified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}
