package state

import (
	"errors"
	"sync"
)

// ErrMailboxClosed is returned by Submit after Close.
var ErrMailboxClosed = errors.New("state: mailbox closed")

// Mailbox runs jobs one key at a time in the order they were submitted.
// Each key with pending jobs owns one goroutine; it exits once the key's
// queue is empty, so idle users cost nothing. Different keys run in
// parallel.
type Mailbox struct {
	mu     sync.Mutex
	queues map[int64][]func()
	closed bool
	wg     sync.WaitGroup
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{queues: make(map[int64][]func())}
}

// Submit appends fn to the queue of key without waiting for it.
// Order is only defined for calls that do not overlap in time.
func (m *Mailbox) Submit(key int64, fn func()) error {
	if fn == nil {
		return errors.New("state: nil mailbox job")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrMailboxClosed
	}
	q, running := m.queues[key]
	m.queues[key] = append(q, fn)
	if !running {
		m.wg.Add(1)
		go m.drain(key)
	}
	return nil
}

func (m *Mailbox) drain(key int64) {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		q := m.queues[key]
		if len(q) == 0 {
			delete(m.queues, key)
			m.mu.Unlock()
			return
		}
		fn := q[0]
		q[0] = nil
		m.queues[key] = q[1:]
		m.mu.Unlock()

		fn()
	}
}

// Len reports how many keys have queued or running jobs.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// Wait blocks until every submitted job has run.
func (m *Mailbox) Wait() {
	m.wg.Wait()
}

// Close stops accepting jobs and waits for the queued ones.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wg.Wait()
}
