package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/m3rciful/whoisbot/bot/cards"
	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/stats"
	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const (
	reasonRateLimited   = "rate_limited"
	reasonUsage         = "usage"
	reasonNotFound      = "not_found"
	reasonCompareFailed = "compare_failed"
	reasonScope         = "scope"
)

var errEmptyLookup = errors.New("empty lookup result")

// usernameRe only checks the shape of a handle; whether it exists is up to
// resolution.
var usernameRe = regexp.MustCompile(`^@[A-Za-z0-9_]+$`)

func (d *Dispatcher) handleCommand(ctx context.Context, ev Event) error {
	if ev.Sender == nil || ev.Chat == nil {
		return nil
	}
	ctx = logger.WithHandler(ctx, "command."+ev.Command)
	switch ev.Command {
	case CmdStart:
		return d.start(ctx, ev)
	case CmdWhois:
		return d.whois(ctx, ev)
	case CmdFind:
		return d.find(ctx, ev)
	case CmdCompare:
		return d.compare(ctx, ev)
	case CmdGroupInfo:
		return d.groupInfo(ctx, ev)
	case CmdGroupCommands:
		if !stats.IsGroup(ev.Chat.Type) {
			return inputErr(reasonScope, textGroupOnly, nil)
		}
		return d.reply(ctx, ev.Message, textGroupCommands, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	case CmdBotInfo:
		text := cards.BotInfo(d.opts.BotUsername, d.opts.Version, d.opts.Commit, d.state.Stats.Uptime())
		return d.reply(ctx, ev.Message, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	}
	return nil
}

func (d *Dispatcher) start(ctx context.Context, ev Event) error {
	if err := d.gate(ctx, ev); err != nil {
		return err
	}
	user := ev.Sender
	d.state.Stats.RecordInteraction(user.ID)
	d.state.Sessions.Update(user.ID, func(s *Session) {
		s.StartMessageID = ev.Message.ID
		s.Screen = menu.Main
	})
	if len(ev.Args) > 0 {
		if inviter, err := strconv.ParseInt(ev.Args[0], 10, 64); err == nil {
			added := d.state.Referrals.Attribute(user.ID, inviter)
			logger.Info(ctx, "referral", "referral.attribute",
				slog.Int64("target", inviter),
				slog.Bool("changed", added),
			)
		}
	}

	view := d.menu.Render(menu.Main)
	return d.reply(ctx, ev.Message, view.Text, &tele.SendOptions{ParseMode: view.ParseMode, ReplyMarkup: view.Markup})
}

// whois shows the card of the replied-to user, or of the sender.
func (d *Dispatcher) whois(ctx context.Context, ev Event) error {
	target := ev.Sender
	if r := ev.Message.ReplyTo; r != nil && r.Sender != nil {
		target = r.Sender
	}
	d.state.Stats.RecordToolUse(ev.Chat.ID, ev.Chat.Type, stats.ToolWhois)

	var status tele.MemberStatus
	if stats.IsGroup(ev.Chat.Type) {
		s, err := d.client.ChatMember(ctx, ev.Chat.ID, target.ID)
		if err != nil {
			logger.Warn(ctx, component, "member.lookup.fail",
				slog.String("status", "skip"),
				slog.String("error_kind", sender.Classify(err)),
			)
		}
		status = s
	}
	return d.sendCard(ctx, ev.Chat.ID, cards.Info(target, status), target.ID, replyOpts(ev.Message))
}

func (d *Dispatcher) find(ctx context.Context, ev Event) error {
	if err := d.gate(ctx, ev); err != nil {
		return err
	}
	if len(ev.Args) != 1 || !usernameRe.MatchString(ev.Args[0]) {
		return inputErr(reasonUsage, textFindUsage, nil)
	}
	user, err := d.resolve(ctx, ev.Args[0])
	if err != nil {
		return inputErr(reasonNotFound, textNotFound, err)
	}
	d.state.Stats.RecordToolUse(ev.Chat.ID, ev.Chat.Type, stats.ToolFind)
	return d.sendCard(ctx, ev.Chat.ID, cards.Info(user, ""), user.ID, replyOpts(ev.Message))
}

func (d *Dispatcher) compare(ctx context.Context, ev Event) error {
	if err := d.gate(ctx, ev); err != nil {
		return err
	}
	if len(ev.Args) != 2 || !usernameRe.MatchString(ev.Args[0]) || !usernameRe.MatchString(ev.Args[1]) {
		return inputErr(reasonUsage, textCompareUsage, nil)
	}
	first, err := d.resolve(ctx, ev.Args[0])
	if err != nil {
		return inputErr(reasonCompareFailed, textCompareFailed, err)
	}
	second, err := d.resolve(ctx, ev.Args[1])
	if err != nil {
		return inputErr(reasonCompareFailed, textCompareFailed, err)
	}
	d.state.Stats.RecordToolUse(ev.Chat.ID, ev.Chat.Type, stats.ToolCompare)
	return d.reply(ctx, ev.Message, cards.Comparison(first, second), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (d *Dispatcher) groupInfo(ctx context.Context, ev Event) error {
	if !stats.IsGroup(ev.Chat.Type) {
		return inputErr(reasonScope, textGroupOnly, nil)
	}
	return d.reply(ctx, ev.Message, d.groupInfoText(ctx, ev.Chat), &tele.SendOptions{ParseMode: tele.ModeMarkdown})
}

func (d *Dispatcher) groupInfoText(ctx context.Context, chat *tele.Chat) string {
	count, err := d.client.MemberCount(ctx, chat.ID)
	if err != nil {
		logger.Warn(ctx, component, "member_count.fail",
			slog.String("status", "skip"),
			slog.String("error_kind", sender.Classify(err)),
		)
		count = -1
	}
	return cards.GroupInfo(chat, count)
}

func (d *Dispatcher) resolve(ctx context.Context, username string) (*tele.User, error) {
	user, err := d.client.ResolveUser(ctx, username)
	if err == nil && user == nil {
		err = errEmptyLookup
	}
	if err != nil {
		logger.Info(ctx, component, "resolve.fail",
			slog.String("status", "not_found"),
			slog.String("target", username),
			slog.String("err", sender.SanitizeError(err)),
		)
		return nil, fmt.Errorf("%w: %s: %w", ErrUnresolved, username, err)
	}
	return user, nil
}

// sendCard sends text as the caption of the user's profile photo, or as a
// plain message when there is no photo or the photo cannot be sent.
func (d *Dispatcher) sendCard(ctx context.Context, chatID int64, text string, userID int64, opts *tele.SendOptions) error {
	opts.ParseMode = tele.ModeMarkdown
	photo, err := d.client.ProfilePhoto(ctx, userID)
	if err != nil {
		logger.Warn(ctx, component, "photo.lookup.fail",
			slog.String("status", "skip"),
			slog.String("error_kind", sender.Classify(err)),
		)
	}
	if photo != nil {
		p := *photo
		p.Caption = text
		err := d.client.SendPhoto(ctx, chatID, &p, opts)
		if err == nil {
			return nil
		}
		logger.Warn(ctx, component, "photo.send.fail",
			slog.String("status", "fail"),
			slog.String("error_kind", sender.Classify(err)),
			slog.String("err", sender.SanitizeError(err)),
		)
	}
	return d.client.Send(ctx, chatID, text, opts)
}

func replyOpts(msg *tele.Message) *tele.SendOptions {
	return &tele.SendOptions{ReplyTo: &tele.Message{ID: msg.ID, Chat: msg.Chat}, AllowWithoutReply: true}
}
