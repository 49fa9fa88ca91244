package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Event is a single emission delivered to subscribers.
type Event struct {
	Topic   Topic
	Seq     int64
	Payload any
}

// Handler receives events for a topic it subscribed to.
type Handler func(Event)

// Subscription identifies one registered handler.
// Go functions are not comparable, so removal goes through the id.
type Subscription struct {
	Topic Topic
	ID    uint64
	bus   *Bus
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.Off(s.Topic, s.ID)
}

type entry struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus is the synchronous publish/subscribe hub.
//
// Thread-safety: the subscriber table is guarded by a mutex, but the lock is
// never held while handlers run. The simulation itself is single-threaded;
// the mutex only protects observers that subscribe from other goroutines.
type Bus struct {
	mu     sync.Mutex
	subs   map[Topic][]entry
	nextID uint64
	clock  *Clock
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the logical clock used to stamp events.
// Used when resuming a journal from a known sequence number.
func WithClock(c *Clock) Option {
	return func(b *Bus) {
		b.clock = c
	}
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[Topic][]entry),
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers handler for topic and returns its subscription.
func (b *Bus) On(topic Topic, handler Handler) Subscription {
	return b.add(topic, handler, false)
}

// Once registers handler for at most one delivery. The handler is removed
// before it runs, so a re-entrant emit of the same topic does not reach it.
func (b *Bus) Once(topic Topic, handler Handler) Subscription {
	return b.add(topic, handler, true)
}

func (b *Bus) add(topic Topic, handler Handler, once bool) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], entry{id: id, handler: handler, once: once})
	return Subscription{Topic: topic, ID: id, bus: b}
}

// Off removes the handler with the given id from topic.
// Returns false if no such handler was registered.
func (b *Bus) Off(topic Topic, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(topic, id)
}

func (b *Bus) removeLocked(topic Topic, id uint64) bool {
	list := b.subs[topic]
	for i, e := range list {
		if e.id != id {
			continue
		}
		// Copy instead of shifting in place: an in-flight Emit may still be
		// iterating over the previous slice.
		next := make([]entry, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, topic)
		} else {
			b.subs[topic] = next
		}
		return true
	}
	return false
}

// Emit stamps payload with the next sequence number and delivers it to every
// current subscriber of topic. The returned Event is the value handlers saw.
func (b *Bus) Emit(topic Topic, payload any) Event {
	ev := Event{Topic: topic, Seq: b.clock.Next(), Payload: payload}

	b.mu.Lock()
	list := b.subs[topic]
	for _, e := range list {
		if e.once {
			b.removeLocked(topic, e.id)
		}
	}
	b.mu.Unlock()

	for _, e := range list {
		b.deliver(ev, e)
	}
	return ev
}

func (b *Bus) deliver(ev Event, e entry) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler failed",
				"topic", string(ev.Topic),
				"seq", ev.Seq,
				"subscription", e.id,
				"error", fmt.Sprint(r),
			)
		}
	}()
	e.handler(ev)
}

// Clear removes all handlers for topic.
func (b *Bus) Clear(topic Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, topic)
}

// ClearAll removes every handler of every topic.
func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[Topic][]entry)
}

// Len returns the number of handlers registered for topic.
func (b *Bus) Len(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Clock returns the bus's logical clock.
func (b *Bus) Clock() *Clock {
	return b.clock
}
