// Package store provides SQLite-backed persistence for sprintchef runs.
//
// The store keeps three tables:
//   - sessions: one row per run (id, seed, balance config)
//   - saves: named save slots holding a state snapshot
//   - journal: the append-only event stream of a session
//
// # Ordering
//
// Journal rows are ordered by the bus sequence number (seq), never by wall
// time. All journal queries use ORDER BY seq ASC, so a replayed run with the
// same seed and inputs reads back an identical stream.
//
// Journal writes use ON CONFLICT(session_id, seq) DO NOTHING: attaching a
// journal twice to the same bus does not duplicate rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Session ids are UUIDv7 strings, sortable by creation time.
package store
