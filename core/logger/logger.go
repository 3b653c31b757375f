package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/whoisbot/core/buildinfo"
	"github.com/m3rciful/whoisbot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	writer  *asyncWriter
	closers []io.Closer

	levelVar slog.LevelVar

	debugSampler ratioSampler
	trace        bool

	// L is the process-wide base logger.
	L *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs wiring steps at startup.
	TWire *slog.Logger
)

// Init configures the global structured logger. Only the first call has effect.
func Init(cfg *config.Config) error {
	var initErr error
	initOnce.Do(func() {
		var logging config.LoggingConfig
		if cfg != nil {
			logging = cfg.Logging
		}
		levelVar.Set(parseLevel(logging.Level))
		debugSampler.Set(debugRatio(logging.DebugSample))
		trace = truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE"))

		sinks, err := openSinks(logging)
		if err != nil {
			initErr = err
			return
		}
		writer = newAsyncWriter(sinks, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   writer,
			format:   pickFormat(logging),
			keyOrder: parseKeyOrder(logging.KeysOrder),
		}))
		slog.SetDefault(L)
		TG = L.With("component", "tg")
		TWire = L.With("component", "tg.wire")

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("profile", profile(logging)),
		)
	})
	return initErr
}

// Shutdown flushes buffered output and closes file sinks.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if writer != nil {
		errs = append(errs, writer.Close())
	}
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func openSinks(cfg config.LoggingConfig) ([]io.Writer, error) {
	sinks := []io.Writer{os.Stdout}
	dir, file := strings.TrimSpace(cfg.Dir), strings.TrimSpace(cfg.BotFile)
	if dir == "" || file == "" {
		return sinks, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, file), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	closers = append(closers, f)
	return append(sinks, f), nil
}

func pickFormat(cfg config.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if p := profile(cfg); p == "debug" || p == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func profile(cfg config.LoggingConfig) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Profile)); p != "" {
		return p
	}
	return "prod"
}

// debugRatio defaults to one debug line out of 50 for sampled events.
func debugRatio(raw string) (int, int) {
	if strings.TrimSpace(raw) == "" {
		return 1, 50
	}
	num, den := parseRatio(raw)
	if num <= 0 || den <= 0 {
		return 0, 0
	}
	return num, den
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Component returns a logger scoped to name, or nil before Init.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs event for component. The context supplies rid and update
// metadata; a logger stored in ctx is used when the global one is not set.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	log := Component(component)
	if log == nil {
		if log = FromContext(ctx); log == nil {
			return
		}
		if component != "" {
			log = log.With("component", component)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	log.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug line should be written.
func ShouldSampleDebug() bool {
	return trace || debugSampler.Allow()
}
