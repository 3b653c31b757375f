package referral

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeRejectsSelfReferral(t *testing.T) {
	s := NewStore()

	assert.False(t, s.Attribute(42, 42))
	_, ok := s.Lookup(42)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestAttributeIsWriteOnce(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Attribute(7, 3))
	assert.False(t, s.Attribute(7, 9))

	inviter, ok := s.Lookup(7)
	assert.True(t, ok)
	assert.Equal(t, int64(3), inviter)
	assert.Equal(t, 1, s.CountInvited(3))
	assert.Equal(t, 0, s.CountInvited(9))
}

func TestAttributeConcurrentFirstWriterWins(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	wins := make(chan int64, 20)
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(inviter int64) {
			defer wg.Done()
			if s.Attribute(100, inviter) {
				wins <- inviter
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for w := range wins {
		winners = append(winners, w)
	}
	assert.Len(t, winners, 1)
	got, _ := s.Lookup(100)
	assert.Equal(t, winners[0], got)
}
