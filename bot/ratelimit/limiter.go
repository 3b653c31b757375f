// Package ratelimit implements the per-user fixed-window budget shared by
// the expensive bot commands.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the length of one counting window.
	DefaultWindow = 60 * time.Second
	// DefaultThreshold is the number of gated commands allowed per window.
	DefaultThreshold = 5
)

// Window is the counting state kept for a single user.
type Window struct {
	Start time.Time
	Count int
}

// Limiter is a fixed-window counter keyed by user id.
// Windows are created lazily and never evicted.
type Limiter struct {
	window    time.Duration
	threshold int

	mu      sync.Mutex
	windows map[int64]*Window
}

// New creates a limiter; non-positive arguments fall back to the defaults.
func New(window time.Duration, threshold int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Limiter{
		window:    window,
		threshold: threshold,
		windows:   make(map[int64]*Window),
	}
}

// Allow counts one gated command for userID at now and reports whether it
// fits into the current window. A window is restarted only when now is
// strictly past Start+window.
func (l *Limiter) Allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[userID]
	if !ok {
		w = &Window{}
		l.windows[userID] = w
	}
	if now.Sub(w.Start) > l.window {
		w.Count = 0
		w.Start = now
	}
	w.Count++
	return w.Count <= l.threshold
}

// Window returns a copy of the user's current window.
func (l *Limiter) Window(userID int64) (Window, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[userID]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// Len reports how many users have a window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Duration returns the configured window length.
func (l *Limiter) Duration() time.Duration { return l.window }

// Threshold returns the configured per-window budget.
func (l *Limiter) Threshold() int { return l.threshold }
