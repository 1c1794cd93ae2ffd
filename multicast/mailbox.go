package multicast

import "sync"

// Mailbox hands envelopes from the receive loop to the poller. It is a bounded
// FIFO; when full, the oldest envelope is dropped to make room, since a
// subscriber only ever wants the latest lines.
//
// Push and Poll may be called concurrently. Once closed, pushes are discarded.
type Mailbox struct {
	mu      sync.Mutex
	closed  bool
	dropped uint64
	c       chan Envelope
}

// NewMailbox returns a mailbox holding up to size envelopes.
func NewMailbox(size int) *Mailbox {
	if size < 1 {
		size = 1
	}
	return &Mailbox{c: make(chan Envelope, size)}
}

// Push enqueues env. It reports false if the mailbox is closed.
func (m *Mailbox) Push(env Envelope) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	for {
		select {
		case m.c <- env:
			return true
		default:
		}
		select {
		case <-m.c:
			m.dropped++
		default:
		}
	}
}

// Poll dequeues the oldest envelope without blocking.
func (m *Mailbox) Poll() (Envelope, bool) {
	select {
	case env := <-m.c:
		return env, true
	default:
		return Envelope{}, false
	}
}

// Len is the number of envelopes waiting.
func (m *Mailbox) Len() int {
	return len(m.c)
}

// Dropped is the number of envelopes discarded because the mailbox was full.
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Close stops the mailbox from accepting envelopes. Envelopes already queued
// can still be polled.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
