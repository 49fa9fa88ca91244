// Package rng isolates every random draw of the simulation behind one
// injectable interface.
//
// Condition rolls, success and critical rolls and random-event selection all
// read from a Source. Production code uses a seeded PCG source; tests supply
// fixed sequences (see internal/testutil) so outcomes are reproducible.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic Source backed by a PCG generator.
//
// Thread-safety: Seeded is not safe for concurrent use. The simulation
// draws from a single goroutine.
type Seeded struct {
	seed int64
	r    *rand.Rand
}

// NewSeeded creates a source whose draws are fully determined by seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{
		seed: seed,
		r:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Float64 returns the next draw in [0, 1).
func (s *Seeded) Float64() float64 {
	return s.r.Float64()
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Chance reports whether a draw from src falls below p.
// p <= 0 never succeeds and p >= 1 always succeeds; a draw is consumed
// either way so roll sequences stay aligned.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Weighted is one entry of a weighted table.
type Weighted struct {
	Key    string
	Weight float64
}

// Pick selects an entry proportionally to its weight using one draw.
// Entries with non-positive weight are never selected. Returns false if the
// table has no positive weight.
func Pick(src Source, table []Weighted) (string, bool) {
	total := 0.0
	for _, w := range table {
		if w.Weight > 0 {
			total += w.Weight
		}
	}
	if total <= 0 {
		return "", false
	}

	roll := src.Float64() * total
	acc := 0.0
	last := ""
	for _, w := range table {
		if w.Weight <= 0 {
			continue
		}
		acc += w.Weight
		last = w.Key
		if roll < acc {
			return w.Key, true
		}
	}
	// Float rounding can leave roll == total; fall back to the last entry.
	return last, true
}
