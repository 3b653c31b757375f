// Package dispatch classifies inbound updates and runs each through the
// gate, accounting and rendering steps of the bot.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/whoisbot/bot/cards"
	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/moderation"
	"github.com/m3rciful/whoisbot/bot/stats"
	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const component = "dispatch"

// Options configures a Dispatcher.
type Options struct {
	BotUsername string
	// WhoisTriggers replaces DefaultWhoisTriggers when non-empty.
	WhoisTriggers []string
	Version       string
	Commit        string
	// Now replaces time.Now for the rate limiter.
	Now func() time.Time
}

// Dispatcher routes every update to exactly one handler.
type Dispatcher struct {
	client   Client
	state    *State
	filter   *moderation.Filter
	menu     *menu.Machine
	triggers map[string]struct{}
	opts     Options
	now      func() time.Time
}

// New wires a dispatcher. filter may be nil to disable text moderation.
func New(client Client, st *State, filter *moderation.Filter, machine *menu.Machine, opts Options) *Dispatcher {
	opts.BotUsername = strings.TrimPrefix(strings.TrimSpace(opts.BotUsername), "@")
	triggers := opts.WhoisTriggers
	if len(triggers) == 0 {
		triggers = DefaultWhoisTriggers
	}
	d := &Dispatcher{
		client:   client,
		state:    st,
		filter:   filter,
		menu:     machine,
		triggers: make(map[string]struct{}, len(triggers)),
		opts:     opts,
		now:      opts.Now,
	}
	if d.now == nil {
		d.now = time.Now
	}
	for _, t := range triggers {
		d.triggers[normalizeTrigger(t)] = struct{}{}
	}
	return d
}

// State returns the shared state the dispatcher mutates.
func (d *Dispatcher) State() *State { return d.state }

// Submit queues upd behind the earlier updates of the same user and returns
// without waiting. Callers must submit in arrival order; other users are
// never blocked.
func (d *Dispatcher) Submit(ctx context.Context, upd *tele.Update) error {
	if ctx == nil {
		ctx = context.Background()
	}
	key, ok := orderKey(Classify(upd, d.opts.BotUsername))
	if !ok {
		return nil
	}
	return d.state.Queue.Submit(key, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, component, "update.panic",
					slog.String("status", "fail"),
					slog.Any("panic", r),
				)
			}
		}()
		if err := d.Handle(ctx, upd); err != nil {
			logger.Warn(ctx, component, "update.fail",
				slog.String("status", "fail"),
				slog.String("err", sender.SanitizeError(err)),
				slog.String("error_kind", sender.Classify(err)),
			)
		}
	})
}

// Drain stops accepting updates and waits for the queued ones.
func (d *Dispatcher) Drain() {
	d.state.Queue.Close()
}

// orderKey is the user an event is ordered by. Membership changes carry
// no user of interest and are ordered per chat.
func orderKey(ev Event) (int64, bool) {
	switch {
	case ev.Kind == KindIgnored:
		return 0, false
	case ev.Kind == KindMembership:
		if ev.Member == nil || ev.Member.Chat == nil {
			return 0, false
		}
		return ev.Member.Chat.ID, true
	case ev.Sender == nil:
		return 0, false
	}
	return ev.Sender.ID, true
}

// Handle processes one update on the calling goroutine. Input problems are
// answered to the user and do not produce an error.
func (d *Dispatcher) Handle(ctx context.Context, upd *tele.Update) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ev := Classify(upd, d.opts.BotUsername)
	if ev.Kind == KindIgnored {
		return nil
	}
	if ev.Sender == nil && ev.Kind != KindMembership {
		return nil
	}

	var err error
	switch ev.Kind {
	case KindCommand:
		err = d.handleCommand(ctx, ev)
	case KindCallback:
		err = d.handleCallback(ctx, ev)
	case KindText:
		err = d.handleText(ctx, ev)
	case KindContact:
		err = d.handleContact(ctx, ev)
	case KindMedia:
		d.handleMedia(ctx, ev)
	case KindMembership:
		d.handleMembership(ctx, ev)
	}

	var ie *InputError
	if errors.As(err, &ie) {
		logger.Info(ctx, component, "input.rejected",
			slog.String("kind", string(ev.Kind)),
			slog.String("command", ev.Command),
			slog.String("status", statusFor(ie)),
			slog.String("err_code", ie.Reason),
		)
		return d.reply(ctx, ev.Message, ie.Message, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}
	return err
}

func statusFor(ie *InputError) string {
	if ie.Reason == reasonRateLimited {
		return "rate_limited"
	}
	return "blocked"
}

// gate applies the shared rate budget of gated commands.
func (d *Dispatcher) gate(ctx context.Context, ev Event) error {
	if d.state.Limiter.Allow(ev.Sender.ID, d.now()) {
		return nil
	}
	w, _ := d.state.Limiter.Window(ev.Sender.ID)
	logger.Info(ctx, "ratelimit", "command.limited",
		slog.String("command", ev.Command),
		slog.Int("count", w.Count),
		slog.Int("threshold", d.state.Limiter.Threshold()),
	)
	return inputErr(reasonRateLimited, textRateLimited, nil)
}

func (d *Dispatcher) handleText(ctx context.Context, ev Event) error {
	if d.filter.IsBanned(ev.Message.Text) {
		logger.Info(ctx, "moderation", "text.banned", slog.String("status", "blocked"))
		d.deleteBestEffort(ctx, ev.Message)
		return nil
	}
	if ev.Chat == nil || !stats.IsGroup(ev.Chat.Type) {
		return nil
	}
	if _, ok := d.triggers[normalizeTrigger(ev.Message.Text)]; !ok {
		return nil
	}
	ev.Command = CmdWhois
	return d.whois(ctx, ev)
}

func (d *Dispatcher) handleMedia(ctx context.Context, ev Event) {
	if ev.Chat == nil {
		return
	}
	kind := moderation.KindOf(ev.Message)
	if !moderation.IsRestrictedMedia(ev.Chat.Type, kind) {
		return
	}
	logger.Info(ctx, "moderation", "media.restricted",
		slog.String("status", "blocked"),
		slog.String("kind", string(kind)),
	)
	d.deleteBestEffort(ctx, ev.Message)
}

func (d *Dispatcher) handleMembership(ctx context.Context, ev Event) {
	upd := ev.Member
	if upd.Chat == nil || upd.NewChatMember == nil || !stats.IsGroup(upd.Chat.Type) {
		return
	}
	status := upd.NewChatMember.Role
	var changed bool
	switch status {
	case tele.Member:
		changed = d.state.Stats.AddGroup(upd.Chat.ID)
	case tele.Left, tele.Kicked:
		changed = d.state.Stats.RemoveGroup(upd.Chat.ID)
	default:
		return
	}
	logger.Info(ctx, "stats", "membership.changed",
		slog.Int64("chat_id", upd.Chat.ID),
		slog.String("chat_type", string(upd.Chat.Type)),
		slog.String("mode", string(status)),
		slog.Bool("changed", changed),
		slog.Int("count", d.state.Stats.ActiveGroups()),
	)
}

func (d *Dispatcher) handleContact(ctx context.Context, ev Event) error {
	sess, _ := d.state.Sessions.Get(ev.Sender.ID)
	if sess.Screen.Kind != menu.KindPhoneCapture {
		return nil
	}
	contact := ev.Message.Contact
	if contact.UserID != ev.Sender.ID {
		return inputErr("foreign_contact", textOwnContactOnly, nil)
	}
	d.state.Sessions.Update(ev.Sender.ID, func(s *Session) { s.Screen = menu.Main })
	opts := anchored(sess.StartMessageID)
	opts.ParseMode = tele.ModeMarkdown
	opts.ReplyMarkup = &tele.ReplyMarkup{RemoveKeyboard: true}
	return d.client.Send(ctx, ev.Chat.ID, cards.Phone(contact), opts)
}

// reply answers msg in its chat as a threaded reply.
func (d *Dispatcher) reply(ctx context.Context, msg *tele.Message, text string, opts *tele.SendOptions) error {
	if msg == nil || msg.Chat == nil {
		return nil
	}
	if opts == nil {
		opts = &tele.SendOptions{}
	}
	opts.ReplyTo = &tele.Message{ID: msg.ID, Chat: msg.Chat}
	opts.AllowWithoutReply = true
	return d.client.Send(ctx, msg.Chat.ID, text, opts)
}

// deleteBestEffort removes msg; expected failures are logged and swallowed.
func (d *Dispatcher) deleteBestEffort(ctx context.Context, msg *tele.Message) {
	ref, ok := RefOf(msg)
	if !ok {
		return
	}
	if err := d.client.Delete(ctx, ref); err != nil {
		logger.Warn(ctx, component, "delete.fail",
			slog.String("status", "skip"),
			slog.String("error_kind", sender.Classify(err)),
			slog.String("err", sender.SanitizeError(err)),
		)
	}
}

// anchored threads a new message under the session anchor when one exists.
func anchored(startMessageID int) *tele.SendOptions {
	opts := &tele.SendOptions{AllowWithoutReply: true}
	if startMessageID != 0 {
		opts.ReplyTo = &tele.Message{ID: startMessageID}
	}
	return opts
}

func normalizeTrigger(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
