// Package referral records which user invited whom through /start links.
package referral

import "sync"

// Store maps invitee ids to inviter ids. Entries are write-once.
type Store struct {
	mu       sync.RWMutex
	inviters map[int64]int64
	invited  map[int64]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		inviters: make(map[int64]int64),
		invited:  make(map[int64]int),
	}
}

// Attribute records inviterID as the inviter of inviteeID. It is a no-op
// returning false for self-referrals and for invitees that already have one.
func (s *Store) Attribute(inviteeID, inviterID int64) bool {
	if inviteeID == inviterID {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inviters[inviteeID]; exists {
		return false
	}
	s.inviters[inviteeID] = inviterID
	s.invited[inviterID]++
	return true
}

// Lookup returns the inviter of inviteeID.
func (s *Store) Lookup(inviteeID int64) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.inviters[inviteeID]
	return id, ok
}

// CountInvited returns how many users inviterID brought in.
func (s *Store) CountInvited(inviterID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invited[inviterID]
}

// Len returns the number of attributed invitees.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inviters)
}
