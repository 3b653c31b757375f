// Package sender runs outbound Telegram calls on a bounded pool of workers.
// Calls for one chat always land on the same worker, so they leave in the
// order they were queued; a shared token bucket keeps the bot under the
// Bot API global message rate. Failed calls are logged and never retried.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/whoisbot/core/logger"

	"golang.org/x/time/rate"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the chat's queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// Workers is the number of per-chat shards.
	Workers int
	// QueueSize bounds each shard's queue.
	QueueSize int
	// RatePerSecond and Burst size the global token bucket; zero disables it.
	RatePerSecond float64
	Burst         int
}

type job struct {
	ctx      context.Context
	chatID   int64
	action   string
	endpoint string
	run      func() error
	done     chan error
}

// Dispatcher executes outbound Telegram calls asynchronously.
type Dispatcher struct {
	shards  []chan job
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	errs atomic.Uint64
}

// NewDispatcher starts the workers. Zero options fall back to defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	d := &Dispatcher{shards: make([]chan job, opts.Workers)}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		go d.worker(d.shards[i])
	}
	return d
}

// Enqueue schedules run without waiting for it.
func (d *Dispatcher) Enqueue(ctx context.Context, chatID int64, action, endpoint string, run func() error) error {
	return d.push(job{ctx: ctx, chatID: chatID, action: action, endpoint: endpoint, run: run})
}

// Do schedules run and waits for its result. When ctx ends first, Do
// returns ctx.Err() and the call may still be performed later.
func (d *Dispatcher) Do(ctx context.Context, chatID int64, action, endpoint string, run func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)
	if err := d.push(job{ctx: ctx, chatID: chatID, action: action, endpoint: endpoint, run: run, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) push(j job) error {
	if j.run == nil {
		return errors.New("telegram sender: nil run function")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shard(j.chatID) <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(chatID int64) chan job {
	return d.shards[uint64(chatID)%uint64(len(d.shards))]
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		err := d.handle(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (d *Dispatcher) handle(j job) error {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.errs.Add(1)
			logger.Warn(ctx, component, "send.skip", append(attrs(j),
				slog.String("status", "skip"),
				slog.String("err", err.Error()),
			)...)
			return err
		}
	}

	err := j.run()
	elapsed := logger.RoundMS(time.Since(start))
	if err == nil {
		logger.Debug(ctx, component, "send.ok", append(attrs(j),
			slog.String("status", "ok"),
			slog.Duration("duration", elapsed),
		)...)
		return nil
	}

	d.errs.Add(1)
	kind := Classify(err)
	level := slog.LevelError
	if IsExpected(err) {
		level = slog.LevelWarn
	}
	logger.Event(ctx, component, level, "send.fail", append(attrs(j),
		slog.String("status", "fail"),
		slog.String("err", SanitizeError(err)),
		slog.String("error_kind", kind),
		slog.Bool("transient", Transient(err)),
		slog.Duration("duration", elapsed),
	)...)
	return err
}

func attrs(j job) []slog.Attr {
	out := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		out = append(out, slog.String("endpoint", j.endpoint))
	}
	if j.chatID != 0 {
		out = append(out, slog.Int64("chat_id", j.chatID))
	}
	return out
}
