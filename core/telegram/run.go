package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/whoisbot/core/config"
	"github.com/m3rciful/whoisbot/core/logger"
	tgsender "github.com/m3rciful/whoisbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const shutdownTimeout = 5 * time.Second

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	// Bot is built from Config when nil.
	Bot *tele.Bot
	// Sender is closed when RunTelegram returns.
	Sender *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool
	DisableSetCommands    bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot      *tele.Bot
	Sender   *tgsender.Dispatcher
	Registry *Registry
}

// NewBot creates the Telebot instance for cfg. Updates reach the handlers
// one at a time in arrival order; handlers that need parallelism hand the
// work off themselves. Network errors reported by Telebot outside of
// handlers are logged.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}
	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook:                WebhookOptions{URL: cfg.Webhook.URL, Token: cfg.Telegram.Token},
	})
	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.Telegram.Token,
		Poller:      poller,
		Client:      BuildHTTPClient(),
		OnError:     onError,
		Synchronous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %s", tgsender.SanitizeError(err))
	}
	return bot, nil
}

func onError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		upd := c.Update()
		ctx = logger.WithUpdateMeta(ctx, upd.ID, senderID(c), chatID(c))
	}
	logger.Error(ctx, "tg", "tg.error",
		slog.String("status", "fail"),
		slog.String("error_kind", tgsender.Classify(err)),
		slog.String("err", tgsender.SanitizeError(err)),
	)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func chatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	buildStart := time.Now()
	bot := opts.Bot
	if bot == nil {
		var err error
		if bot, err = NewBot(cfg); err != nil {
			return err
		}
	}
	buildTook := time.Since(buildStart)

	senderQueue := opts.Sender
	if senderQueue == nil {
		senderQueue = tgsender.NewDispatcher(tgsender.Options{
			Workers:       cfg.Sender.Workers,
			QueueSize:     cfg.Sender.QueueSize,
			RatePerSecond: cfg.Sender.RatePerSecond,
			Burst:         cfg.Sender.Burst,
		})
	}
	defer senderQueue.Close()

	rt := Runtime{Bot: bot, Sender: senderQueue, Registry: reg}

	var server *http.Server
	switch p := bot.Poller.(type) {
	case *tele.Webhook:
		server = newWebhookServer(cfg, p)
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", server.Addr),
			slog.String("public_url", strings.TrimRight(cfg.Webhook.URL, "/")),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	default:
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		if !opts.DisableWebhookCleanup {
			if err := bot.RemoveWebhook(false); err != nil {
				logger.Warn(ctx, "tg", "delete_webhook",
					slog.String("status", "fail"),
					slog.String("err", tgsender.SanitizeError(err)),
				)
			} else {
				logger.Info(ctx, "tg", "delete_webhook", slog.String("status", "ok"))
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	if !opts.DisableSetCommands {
		_ = InitBotCommands(bot, reg)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	serverErr := make(chan error, 1)
	if server != nil {
		go func() {
			err := server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			serverErr <- err
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case runErr = <-serverErr:
		if runErr != nil {
			logger.Error(ctx, "http", "server.fail",
				slog.String("status", "fail"),
				slog.String("err", runErr.Error()),
			)
		}
	case <-runDone:
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = server.Shutdown(shutdownCtx)
		cancel()
	}
	select {
	case <-runDone:
	default:
		bot.Stop()
		<-runDone
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.Background(), rt)
	}

	if stopErr != nil {
		return stopErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// newWebhookServer serves the webhook updates plus the liveness endpoints.
func newWebhookServer(cfg *coreconfig.Config, hook http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "Bot is running!")
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})
	mux.Handle("POST "+WebhookPath(cfg.Telegram.Token), hook)

	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
