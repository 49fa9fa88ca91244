package store

import (
	"context"
	"log/slog"

	"github.com/roach88/sprintchef/internal/eventbus"
)

// DaySource reports the current in-game day. *state.GameState satisfies it.
type DaySource interface {
	Day() int
}

// Journal appends every bus event of a session to the store.
//
// Bus handlers cannot return errors, so the first write failure is kept and
// reported by Err; later events are still attempted.
type Journal struct {
	store     *Store
	sessionID string
	day       DaySource
	logger    *slog.Logger
	subs      []eventbus.Subscription
	written   int
	err       error
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger used for write failures.
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		j.logger = l
	}
}

// AttachJournal subscribes a journal for sessionID to every topic of bus.
// ctx bounds each write; cancel it together with Detach.
func (s *Store) AttachJournal(ctx context.Context, bus *eventbus.Bus, sessionID string, day DaySource, opts ...JournalOption) *Journal {
	j := &Journal{
		store:     s,
		sessionID: sessionID,
		day:       day,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	for _, topic := range eventbus.AllTopics() {
		j.subs = append(j.subs, bus.On(topic, func(ev eventbus.Event) {
			j.write(ctx, ev)
		}))
	}
	return j
}

func (j *Journal) write(ctx context.Context, ev eventbus.Event) {
	day := 0
	if j.day != nil {
		day = j.day.Day()
	}
	if err := j.store.AppendJournal(ctx, j.sessionID, day, ev); err != nil {
		j.logger.Error("journal write failed",
			"session", j.sessionID,
			"topic", string(ev.Topic),
			"seq", ev.Seq,
			"error", err,
		)
		if j.err == nil {
			j.err = err
		}
		return
	}
	j.written++
}

// Detach unsubscribes the journal from the bus.
func (j *Journal) Detach() {
	for _, sub := range j.subs {
		sub.Unsubscribe()
	}
	j.subs = nil
}

// Written returns how many events were stored.
func (j *Journal) Written() int {
	return j.written
}

// Err returns the first write failure, if any.
func (j *Journal) Err() error {
	return j.err
}
