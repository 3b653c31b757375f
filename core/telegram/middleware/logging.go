package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/whoisbot/core/logger"
	"github.com/m3rciful/whoisbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/whoisbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentSet remembers update IDs for keep. Expired IDs are swept at most
// once per keep, so a lookup is O(1) between sweeps.
type recentSet struct {
	mu        sync.Mutex
	seen      map[int]time.Time
	keep      time.Duration
	lastSweep time.Time
}

func newRecentSet(keep time.Duration) *recentSet {
	return &recentSet{seen: make(map[int]time.Time), keep: keep}
}

// check records id at now and reports whether it was already present.
func (r *recentSet) check(id int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Sub(r.lastSweep) >= r.keep {
		for k, ts := range r.seen {
			if now.Sub(ts) > r.keep {
				delete(r.seen, k)
			}
		}
		r.lastSweep = now
	}
	if ts, ok := r.seen[id]; ok && now.Sub(ts) <= r.keep {
		return true
	}
	r.seen[id] = now
	return false
}

func (r *recentSet) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// recentUpdates avoids double logging of one update_id.
var recentUpdates = newRecentSet(10 * time.Second)

// LoggerMiddleware logs a single receipt line per update and sets rid.
// It deduplicates by update_id to prevent double logging when middleware is applied on multiple branches.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(context.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !recentUpdates.check(upd.ID, time.Now()) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", tghelpers.UpdateKind(upd)),
			}
			if chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				attrs = append(attrs, slog.String("action", logger.SanitizeLimit(callbacks.Key(upd.Callback), 64)))
			case upd.Message != nil:
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}
