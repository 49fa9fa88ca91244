package eventbus

import "sync/atomic"

// Clock is the monotonic logical clock that stamps every emission.
//
// Seq values order events for journaling and golden traces. Wall-clock
// timestamps are never used for ordering.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after a known sequence number.
// Used when a saved game is restored and its journal continues.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
