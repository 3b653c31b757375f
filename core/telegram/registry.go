package telegram

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

const wireComponent = "tg.wire"

// Registry holds bot commands.
type Registry struct {
	commands map[string]commands.Command
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds a new command. Invalid and duplicate registrations are
// logged and skipped; it reports whether cmd was added.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) bool {
	ctx := context.Background()
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.Warn(ctx, wireComponent, "register.command.skip",
			slog.String("command", name),
			slog.String("err_code", "invalid"),
		)
		return false
	}
	if name[0] != '/' {
		logger.Warn(ctx, wireComponent, "register.command.skip",
			slog.String("command", name),
			slog.String("err_code", "no_slash_prefix"),
		)
		return false
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(ctx, wireComponent, "register.command.duplicate",
			slog.String("command", name),
		)
		return false
	}
	r.commands[name] = cmd
	return true
}

// ListCommands returns the commands sorted by name, optionally without hidden ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && meta.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(cmd, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand searches for a command by name or its aliases and returns
// the canonical key with metadata if found.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// CommandSetter publishes the command menu; *tele.Bot implements it.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot CommandSetter, reg *Registry) error {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.Error(context.Background(), wireComponent, "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.Info(context.Background(), wireComponent, "register.commands.set",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
	)
	return nil
}
