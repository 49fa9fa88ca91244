package testutil

import "sync"

// Rolls is a scripted random source for tests.
//
// Draws are returned in order and the sequence wraps around when exhausted,
// so a short script can drive a long run. An empty script always yields 0.
// The same script against the same configuration produces byte-identical
// event traces.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Rolls struct {
	mu     sync.Mutex
	values []float64
	next   int
	drawn  int
}

// NewRolls creates a source that yields values in order.
func NewRolls(values ...float64) *Rolls {
	return &Rolls{values: append([]float64(nil), values...)}
}

// Float64 returns the next scripted draw.
//
// Implements rng.Source.
func (r *Rolls) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drawn++
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next]
	r.next = (r.next + 1) % len(r.values)
	return v
}

// Push appends draws to the script.
func (r *Rolls) Push(values ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, values...)
}

// Drawn returns how many draws have been taken.
func (r *Rolls) Drawn() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawn
}

// Reset rewinds the script to its first value.
//
// Used for test reuse. After Reset(), the next draw is values[0].
func (r *Rolls) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	r.drawn = 0
}
