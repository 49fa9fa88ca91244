package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
)

// CreateSession records a new run and returns its id.
func (s *Store) CreateSession(ctx context.Context, seed int64, cfg config.Config) (Session, error) {
	cfgJSON, err := marshalConfig(cfg)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	sess := Session{
		ID:        s.ids.Generate(),
		Seed:      seed,
		Config:    cfg,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, config, created_at)
		VALUES (?, ?, ?, ?)
	`,
		sess.ID,
		sess.Seed,
		cfgJSON,
		sess.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// SaveSnapshot writes snap into slot, replacing whatever the slot held.
// seq is the bus sequence number at save time; a restored run resumes its
// journal after it.
//
// Note: The session referenced by sessionID must exist (foreign key constraint).
func (s *Store) SaveSnapshot(ctx context.Context, slot, sessionID string, seq int64, snap state.Snapshot) error {
	if slot == "" {
		return fmt.Errorf("save snapshot: empty slot name")
	}
	snapJSON, err := marshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, session_id, day, seq, snapshot, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			session_id = excluded.session_id,
			day = excluded.day,
			seq = excluded.seq,
			snapshot = excluded.snapshot,
			saved_at = excluded.saved_at
	`,
		slot,
		sessionID,
		snap.Day,
		seq,
		snapJSON,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// DeleteSave removes a save slot. Returns false if the slot did not exist.
func (s *Store) DeleteSave(ctx context.Context, slot string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return false, fmt.Errorf("delete save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete save: %w", err)
	}
	return n > 0, nil
}

// AppendJournal inserts one event into the session journal.
// Uses ON CONFLICT(session_id, seq) DO NOTHING for idempotency.
func (s *Store) AppendJournal(ctx context.Context, sessionID string, day int, ev eventbus.Event) error {
	payload, err := marshalPayload(ev.Payload)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal (session_id, seq, topic, day, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		sessionID,
		ev.Seq,
		string(ev.Topic),
		day,
		payload,
	)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}
