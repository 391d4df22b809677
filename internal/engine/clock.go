package engine

import "sync/atomic"

// Clock is a monotonic logical clock for ordering transitions.
//
// Transition.Seq comes from this clock, never from wall time, so a recorded
// journal sorts the same way regardless of timer jitter.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
