// Package app wires configuration, the Telegram runtime and the dispatcher
// into a runnable bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/whoisbot/bot/dispatch"
	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/moderation"
	"github.com/m3rciful/whoisbot/bot/tgclient"
	"github.com/m3rciful/whoisbot/core/bootstrap"
	"github.com/m3rciful/whoisbot/core/buildinfo"
	corecmd "github.com/m3rciful/whoisbot/core/cmd"
	coreconfig "github.com/m3rciful/whoisbot/core/config"
	"github.com/m3rciful/whoisbot/core/logger"
	coretelegram "github.com/m3rciful/whoisbot/core/telegram"
	"github.com/m3rciful/whoisbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/whoisbot/core/telegram/helpers"
	"github.com/m3rciful/whoisbot/core/telegram/middleware"
	"github.com/m3rciful/whoisbot/core/telegram/router"
	"github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var commandMenu = []struct {
	name        string
	description string
}{
	{dispatch.CmdStart, "بدء البوت وعرض القائمة الرئيسية"},
	{dispatch.CmdWhois, "عرض معلومات حساب (بالرد على رسالة)"},
	{dispatch.CmdFind, "البحث عن مستخدم بالمعرف"},
	{dispatch.CmdCompare, "مقارنة حسابين"},
	{dispatch.CmdGroupInfo, "معلومات المجموعة"},
	{dispatch.CmdGroupCommands, "أوامر المجموعة"},
	{dispatch.CmdBotInfo, "معلومات البوت"},
}

// App is the assembled bot.
type App struct {
	cfg        *coreconfig.Config
	bot        *tele.Bot
	sender     *sender.Dispatcher
	dispatcher *dispatch.Dispatcher
	registry   *coretelegram.Registry
	counters   *middleware.UpdateCounters
}

// Bootstrap initializes logging and the sender, connects to Telegram and
// assembles the app.
func Bootstrap(cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	bot, err := coretelegram.NewBot(cfg)
	if err != nil {
		res.Sender.Close()
		return nil, err
	}
	a, err := New(cfg, bot, res.Sender)
	if err != nil {
		res.Sender.Close()
		return nil, err
	}
	return a, nil
}

// New assembles the app around an existing bot. A nil queue sends directly.
func New(cfg *coreconfig.Config, bot *tele.Bot, queue *sender.Dispatcher) (*App, error) {
	if cfg == nil || bot == nil {
		return nil, fmt.Errorf("app: config and bot are required")
	}
	username := cfg.Telegram.Username
	if username == "" && bot.Me != nil {
		username = bot.Me.Username
	}

	filter, err := moderation.New(cfg.Moderation.BannedTerms)
	if err != nil {
		return nil, fmt.Errorf("app: banned terms: %w", err)
	}
	machine := menu.New(menu.Options{
		BotUsername:  username,
		ChannelURL:   cfg.Links.ChannelURL,
		DeveloperURL: cfg.Links.DeveloperURL,
	})
	state := dispatch.NewState(time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.Threshold)

	a := &App{
		cfg:    cfg,
		bot:    bot,
		sender: queue,
		dispatcher: dispatch.New(tgclient.New(bot, queue), state, filter, machine, dispatch.Options{
			BotUsername:   username,
			WhoisTriggers: cfg.Moderation.WhoisTriggers,
			Version:       buildinfo.Version,
			Commit:        buildinfo.Commit,
		}),
		registry: coretelegram.NewRegistry(),
		counters: middleware.NewUpdateCounters(),
	}
	for _, c := range commandMenu {
		a.registry.RegisterCommand("/"+c.name, commands.Command{Handler: a.handle, Description: c.description})
	}
	return a, nil
}

// Dispatcher exposes the update dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher { return a.dispatcher }

// Registry exposes the command registry.
func (a *App) Registry() *coretelegram.Registry { return a.registry }

// handle runs on the poll loop, so updates are queued in arrival order.
func (a *App) handle(c tele.Context) error {
	upd := c.Update()
	return a.dispatcher.Submit(tghelpers.BuildContext(c), &upd)
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry)
	routes = append(routes, router.CallbackRoute(a.handle))
	routes = append(routes, router.MessageRoutes(a.handle)...)

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Bot:         a.bot,
		Sender:      a.sender,
		Middlewares: coretelegram.DefaultMiddlewares(a.counters),
		Routes:      routes,
		OnStop:      a.logSummary,
	}, nil
}

func (a *App) logSummary(ctx context.Context, _ coretelegram.Runtime) error {
	a.dispatcher.Drain()
	kinds, failed := a.counters.Snapshot()
	g := a.dispatcher.State().Stats.SnapshotGlobal()
	attrs := []slog.Attr{
		slog.Int("count", g.TotalInteractions),
		slog.Int("users", g.DistinctUsers),
		slog.Int("groups", g.ActiveGroupCount),
		slog.Int("failed", failed),
		slog.Duration("uptime", g.Uptime),
	}
	for _, k := range a.counters.Kinds() {
		attrs = append(attrs, slog.Int("updates_"+k, kinds[k]))
	}
	if a.sender != nil {
		attrs = append(attrs, slog.Uint64("send_errors", a.sender.ErrorCount()))
	}
	logger.Info(ctx, "app", "summary", attrs...)
	return nil
}
