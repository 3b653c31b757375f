package dispatch

import (
	"time"

	"github.com/m3rciful/whoisbot/bot/menu"
	"github.com/m3rciful/whoisbot/bot/ratelimit"
	"github.com/m3rciful/whoisbot/bot/referral"
	"github.com/m3rciful/whoisbot/bot/stats"
	"github.com/m3rciful/whoisbot/core/telegram/state"
)

// Session is the per-user navigation context.
type Session struct {
	// StartMessageID is the /start message menu replies are threaded to.
	StartMessageID int
	Screen         menu.Screen
}

// State owns every piece of process-wide mutable data. Each part is safe
// for concurrent use; Queue runs the events of one user in arrival order.
type State struct {
	Limiter   *ratelimit.Limiter
	Stats     *stats.Stats
	Referrals *referral.Store
	Sessions  *state.Memory[Session]
	Queue     *state.Mailbox
}

// NewState builds empty state with the given rate window.
func NewState(window time.Duration, threshold int, opts ...stats.Option) *State {
	return &State{
		Limiter:   ratelimit.New(window, threshold),
		Stats:     stats.New(opts...),
		Referrals: referral.NewStore(),
		Sessions:  state.NewMemory[Session](),
		Queue:     state.NewMailbox(),
	}
}
