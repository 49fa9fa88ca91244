// Package state owns the canonical simulation state.
//
// GameState is the single mutable aggregate of a run: day and phase, the
// per-phase action pools, condition, skills and experience, the stamina,
// technical-debt, mood and dish-progress meters, the daily policy and the
// one-shot rest and pivot flags. Every mutation goes through Update, which
// clamps bounded fields, rejects invalid input as a whole and announces the
// change on the event bus as state-changed. Higher-level methods
// (ConsumeAction, AdvanceDay, GrantExp, ...) are built on Update and emit
// their specific topic after it.
//
// Readers never see the live aggregate: Snapshot returns a deep copy.
//
// The day only moves forward through AdvanceDay. Nothing in this package
// calls it; the orchestrator decides when a day is over.
//
// Thread-safety: GameState is not safe for concurrent use. The simulation
// is single-threaded and event handlers run synchronously on the caller's
// stack.
package state
