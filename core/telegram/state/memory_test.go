package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	Anchor int
	Screen string
}

func TestMemoryUpdateAndGet(t *testing.T) {
	m := NewMemory[session]()

	_, ok := m.Get(1)
	assert.False(t, ok)

	m.Update(1, func(s *session) { s.Anchor = 10 })
	m.Update(1, func(s *session) { s.Screen = "tools" })

	got, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, session{Anchor: 10, Screen: "tools"}, got)

	got.Anchor = 99
	again, _ := m.Get(1)
	assert.Equal(t, 10, again.Anchor, "Get returns a copy")

	m.Clear(1)
	assert.Equal(t, 0, m.Len())
}

func TestMailboxKeepsOrderPerKey(t *testing.T) {
	m := NewMailbox()

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	for i := 0; i < 200; i++ {
		key := int64(i % 3)
		n := i
		err := m.Submit(key, func() {
			if n%7 == 0 {
				time.Sleep(time.Millisecond)
			}
			mu.Lock()
			got[key] = append(got[key], n)
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	m.Wait()

	for key, seq := range got {
		assert.IsIncreasing(t, seq, "key %d", key)
	}
	assert.Len(t, got[0], 67)
	assert.Equal(t, 0, m.Len(), "idle keys are released")
}

func TestMailboxRunsOneJobPerKeyAtATime(t *testing.T) {
	m := NewMailbox()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Submit(5, func() {
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}))
	}
	m.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestMailboxDifferentKeysDoNotBlock(t *testing.T) {
	m := NewMailbox()

	release := make(chan struct{})
	require.NoError(t, m.Submit(1, func() { <-release }))

	done := make(chan struct{})
	require.NoError(t, m.Submit(2, func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job on another key blocked")
	}
	close(release)
	m.Wait()
}

func TestMailboxCloseDrainsAndRejects(t *testing.T) {
	m := NewMailbox()

	var ran int
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Submit(9, func() {
			time.Sleep(time.Millisecond)
			ran++
		}))
	}
	m.Close()

	assert.Equal(t, 5, ran)
	assert.ErrorIs(t, m.Submit(9, func() {}), ErrMailboxClosed)
	assert.Error(t, m.Submit(9, nil))
}
