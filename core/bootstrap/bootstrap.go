package bootstrap

import (
	"fmt"

	coreconfig "github.com/m3rciful/whoisbot/core/config"
	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/sender"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	// Sender is the outbound queue every Telegram call goes through.
	Sender *sender.Dispatcher
}

// Run initializes the logger and starts the outbound sender.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.Init
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	s := opts.Config.Sender
	return &Result{Sender: sender.NewDispatcher(sender.Options{
		Workers:       s.Workers,
		QueueSize:     s.QueueSize,
		RatePerSecond: s.RatePerSecond,
		Burst:         s.Burst,
	})}, nil
}
