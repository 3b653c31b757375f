package state

import "sync"

// Memory stores one session value of type S per user.
// Sessions are never expired; they live until Clear or process exit.
type Memory[S any] struct {
	mu       sync.RWMutex
	sessions map[int64]*S
}

// NewMemory constructs an empty session store.
func NewMemory[S any]() *Memory[S] {
	return &Memory[S]{sessions: make(map[int64]*S)}
}

// Get returns a copy of the user's session and whether it exists.
func (m *Memory[S]) Get(userID int64) (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return *s, true
	}
	var zero S
	return zero, false
}

// Update applies fn to the user's session, creating a zero session first.
func (m *Memory[S]) Update(userID int64, fn func(*S)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = new(S)
		m.sessions[userID] = s
	}
	fn(s)
}

// Clear removes the user's session.
func (m *Memory[S]) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len reports the number of stored sessions.
func (m *Memory[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
