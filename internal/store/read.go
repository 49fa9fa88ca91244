package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
)

// ErrNotFound is returned when a session or save slot does not exist.
var ErrNotFound = errors.New("not found")

// Session is one recorded run.
type Session struct {
	ID        string        `json:"id"`
	Seed      int64         `json:"seed"`
	Config    config.Config `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// SaveInfo describes a save slot without its snapshot.
type SaveInfo struct {
	Slot      string    `json:"slot"`
	SessionID string    `json:"session_id"`
	Day       int       `json:"day"`
	Seq       int64     `json:"seq"`
	SavedAt   time.Time `json:"saved_at"`
}

// Save is a loaded save slot.
type Save struct {
	SaveInfo
	Snapshot state.Snapshot `json:"snapshot"`
}

// JournalEntry is one persisted event.
type JournalEntry struct {
	SessionID string          `json:"session_id"`
	Seq       int64           `json:"seq"`
	Topic     eventbus.Topic  `json:"topic"`
	Day       int             `json:"day"`
	Payload   json.RawMessage `json:"payload"`
}

// JournalFilter narrows ReadJournal. Zero values match everything.
type JournalFilter struct {
	Topics   []eventbus.Topic
	Day      int
	AfterSeq int64
	Limit    int
}

// GetSession returns the session with the given id.
func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	var (
		sess    Session
		cfgJSON string
		created string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, config, created_at FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Seed, &cfgJSON, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}

	if sess.Config, err = unmarshalConfig(cfgJSON); err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every recorded session, oldest first.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, config, created_at
		FROM sessions
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			sess    Session
			cfgJSON string
			created string
		)
		if err := rows.Scan(&sess.ID, &sess.Seed, &cfgJSON, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Config, err = unmarshalConfig(cfgJSON); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		if sess.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LoadSnapshot returns the save held in slot.
func (s *Store) LoadSnapshot(ctx context.Context, slot string) (Save, error) {
	var (
		save     Save
		snapJSON string
		saved    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT slot, session_id, day, seq, snapshot, saved_at FROM saves WHERE slot = ?
	`, slot).Scan(&save.Slot, &save.SessionID, &save.Day, &save.Seq, &snapJSON, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return Save{}, fmt.Errorf("save slot %q: %w", slot, ErrNotFound)
	}
	if err != nil {
		return Save{}, fmt.Errorf("load snapshot: %w", err)
	}

	if save.Snapshot, err = unmarshalSnapshot(snapJSON); err != nil {
		return Save{}, fmt.Errorf("load snapshot: %w", err)
	}
	if save.SavedAt, err = parseTime(saved); err != nil {
		return Save{}, fmt.Errorf("load snapshot: %w", err)
	}
	return save, nil
}

// ListSaves returns every save slot ordered by slot name.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSaves(ctx context.Context) ([]SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, session_id, day, seq, saved_at
		FROM saves
		ORDER BY slot COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()

	saves := []SaveInfo{}
	for rows.Next() {
		var (
			info  SaveInfo
			saved string
		)
		if err := rows.Scan(&info.Slot, &info.SessionID, &info.Day, &info.Seq, &saved); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		if info.SavedAt, err = parseTime(saved); err != nil {
			return nil, err
		}
		saves = append(saves, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return saves, nil
}

// ReadJournal returns the journal of a session ordered by seq.
// Returns an empty slice (not nil) if no entries match.
func (s *Store) ReadJournal(ctx context.Context, sessionID string, f JournalFilter) ([]JournalEntry, error) {
	var (
		where = []string{"session_id = ?"}
		args  = []any{sessionID}
	)
	if len(f.Topics) > 0 {
		marks := make([]string, len(f.Topics))
		for i, topic := range f.Topics {
			marks[i] = "?"
			args = append(args, string(topic))
		}
		where = append(where, "topic IN ("+strings.Join(marks, ", ")+")")
	}
	if f.Day > 0 {
		where = append(where, "day = ?")
		args = append(args, f.Day)
	}
	if f.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, f.AfterSeq)
	}

	query := `SELECT session_id, seq, topic, day, payload FROM journal WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY seq ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		var (
			e       JournalEntry
			topic   string
			payload string
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &topic, &e.Day, &payload); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Topic = eventbus.Topic(topic)
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// LastSeq returns the highest journal seq of a session, or 0 if the
// journal is empty.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM journal WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
