// Package eventmeta implements the bounded, reusable events.Meta pool (C2).
package eventmeta

import "github.com/withobsrvr/solana-event-stream/internal/events"

// DefaultCapacity matches the source's EventMetadataPool sizing.
const DefaultCapacity = 1000

// Pool is a process-wide, thread-safe bounded queue of reusable
// *events.Meta values. Acquire returns a pooled value if one is available,
// otherwise constructs a fresh one; Release pushes a value back, silently
// dropping it if the pool is full. A buffered channel gives the
// single-producer-single-consumer-friendly, contention-free fast path the
// spec calls for without a custom lock-free structure.
type Pool struct {
	slots chan *events.Meta
}

// New creates a Pool with the given capacity.
func New(capacity int) *Pool {
	return &Pool{slots: make(chan *events.Meta, capacity)}
}

// Default creates a Pool at DefaultCapacity.
func Default() *Pool {
	return New(DefaultCapacity)
}

// Acquire returns a *events.Meta ready for reuse.
func (p *Pool) Acquire() *events.Meta {
	select {
	case m := <-p.slots:
		return m
	default:
		return &events.Meta{}
	}
}

// Release recycles m and returns it to the pool, dropping it if the pool is
// at capacity.
func (p *Pool) Release(m *events.Meta) {
	if m == nil {
		return
	}
	m.Recycle()
	select {
	case p.slots <- m:
	default:
	}
}
