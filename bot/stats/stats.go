// Package stats keeps the process-wide usage counters shown on the stats screen.
package stats

import (
	"fmt"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Tool identifies a lookup operation counted per group.
type Tool string

const (
	ToolWhois   Tool = "whois"
	ToolFind    Tool = "find"
	ToolCompare Tool = "compare"
)

// ToolCounts holds the per-group tool tallies.
type ToolCounts struct {
	Whois   int
	Find    int
	Compare int
}

// Total sums the three counters.
func (c ToolCounts) Total() int {
	return c.Whois + c.Find + c.Compare
}

// Global is a point-in-time view of the bot-wide counters.
type Global struct {
	Uptime            time.Duration
	DistinctUsers     int
	TotalInteractions int
	ActiveGroupCount  int
	// BusiestGroup is zero when HasBusiest is false.
	BusiestGroup int64
	HasBusiest   bool
}

// Stats is safe for concurrent use. Nothing is ever evicted.
type Stats struct {
	now   func() time.Time
	start time.Time

	mu           sync.RWMutex
	interactions map[int64]int
	groups       map[int64]*ToolCounts
	groupOrder   []int64
	active       map[int64]struct{}
}

// Option customises a Stats instance.
type Option func(*Stats)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Stats) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns counters whose uptime starts now.
func New(opts ...Option) *Stats {
	s := &Stats{
		now:          time.Now,
		interactions: make(map[int64]int),
		groups:       make(map[int64]*ToolCounts),
		active:       make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start = s.now()
	return s
}

// StartTime reports when counting started.
func (s *Stats) StartTime() time.Time { return s.start }

// Uptime returns the time elapsed since StartTime.
func (s *Stats) Uptime() time.Duration { return s.now().Sub(s.start) }

// RecordInteraction increments the user's interaction counter.
func (s *Stats) RecordInteraction(userID int64) {
	s.mu.Lock()
	s.interactions[userID]++
	s.mu.Unlock()
}

// Interactions returns the user's counter.
func (s *Stats) Interactions(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interactions[userID]
}

// RecordToolUse counts one use of tool in chatID. Only group and supergroup
// chats are counted; it reports whether a counter changed.
func (s *Stats) RecordToolUse(chatID int64, chatType tele.ChatType, tool Tool) bool {
	if !IsGroup(chatType) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.groups[chatID]
	if !ok {
		rec = &ToolCounts{}
		s.groups[chatID] = rec
		s.groupOrder = append(s.groupOrder, chatID)
	}
	switch tool {
	case ToolWhois:
		rec.Whois++
	case ToolFind:
		rec.Find++
	case ToolCompare:
		rec.Compare++
	default:
		return false
	}
	return true
}

// SnapshotGroup returns the chat's counters, zeros when it has none.
func (s *Stats) SnapshotGroup(chatID int64) ToolCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.groups[chatID]; ok {
		return *rec
	}
	return ToolCounts{}
}

// HasGroupRecord reports whether chatID ever had a tool counted.
func (s *Stats) HasGroupRecord(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[chatID]
	return ok
}

// SnapshotGlobal aggregates the bot-wide counters. The busiest group is the
// one with the highest tool total; ties go to the record created first.
func (s *Stats) SnapshotGlobal() Global {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := Global{
		Uptime:           s.now().Sub(s.start),
		DistinctUsers:    len(s.interactions),
		ActiveGroupCount: len(s.active),
	}
	for _, n := range s.interactions {
		g.TotalInteractions += n
	}
	best := 0
	for _, id := range s.groupOrder {
		if total := s.groups[id].Total(); total > best {
			best = total
			g.BusiestGroup = id
			g.HasBusiest = true
		}
	}
	return g
}

// AddGroup marks chatID as a group where the bot is a member.
func (s *Stats) AddGroup(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[chatID]; ok {
		return false
	}
	s.active[chatID] = struct{}{}
	return true
}

// RemoveGroup forgets chatID; removing an absent chat is a no-op.
func (s *Stats) RemoveGroup(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[chatID]; !ok {
		return false
	}
	delete(s.active, chatID)
	return true
}

// IsActiveGroup reports membership of chatID in the active set.
func (s *Stats) IsActiveGroup(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.active[chatID]
	return ok
}

// ActiveGroups returns the number of active groups.
func (s *Stats) ActiveGroups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

// IsGroup reports whether chatType is a group or supergroup.
func IsGroup(chatType tele.ChatType) bool {
	return chatType == tele.ChatGroup || chatType == tele.ChatSuperGroup
}

// FormatUptime renders d as "Hh Mm Ss".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, sec)
}
