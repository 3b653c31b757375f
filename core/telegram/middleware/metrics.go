package middleware

import (
	"sort"
	"sync"

	tghelpers "github.com/m3rciful/whoisbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// UpdateCounters tallies handled updates per kind and handler failures.
type UpdateCounters struct {
	mu     sync.Mutex
	kinds  map[string]int
	failed int
}

// NewUpdateCounters returns empty counters.
func NewUpdateCounters() *UpdateCounters {
	return &UpdateCounters{kinds: make(map[string]int)}
}

// Middleware counts every update passing through next.
func (m *UpdateCounters) Middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		m.mu.Lock()
		m.kinds[tghelpers.UpdateKind(c.Update())]++
		if err != nil {
			m.failed++
		}
		m.mu.Unlock()
		return err
	}
}

// Snapshot returns the per-kind counts and the number of failed updates.
func (m *UpdateCounters) Snapshot() (map[string]int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.kinds))
	for k, v := range m.kinds {
		out[k] = v
	}
	return out, m.failed
}

// Kinds returns the counted kinds in name order.
func (m *UpdateCounters) Kinds() []string {
	counts, _ := m.Snapshot()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
