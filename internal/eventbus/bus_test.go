package eventbus

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietBus() *Bus {
	return New(WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func TestBus_EmitInSubscriptionOrder(t *testing.T) {
	b := quietBus()
	var order []string

	b.On("t", func(Event) { order = append(order, "first") })
	b.On("t", func(Event) { order = append(order, "second") })
	b.On("other", func(Event) { order = append(order, "other") })

	b.Emit("t", nil)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_SamePayloadForAllSubscribers(t *testing.T) {
	b := quietBus()
	payload := &struct{ N int }{N: 7}
	var got []any

	b.On("t", func(ev Event) { got = append(got, ev.Payload) })
	b.On("t", func(ev Event) { got = append(got, ev.Payload) })
	b.Emit("t", payload)

	require.Len(t, got, 2)
	assert.Same(t, payload, got[0])
	assert.Same(t, payload, got[1])
}

func TestBus_SeqIsMonotonic(t *testing.T) {
	b := quietBus()
	first := b.Emit("a", nil)
	second := b.Emit("b", nil)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := quietBus()
	calls := 0
	sub := b.On("t", func(Event) { calls++ })

	b.Emit("t", nil)
	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Emit("t", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len("t"))
}

func TestBus_Off(t *testing.T) {
	b := quietBus()
	calls := 0
	sub := b.On("t", func(Event) { calls++ })

	assert.True(t, b.Off("t", sub.ID))
	assert.False(t, b.Off("t", sub.ID), "second removal reports missing handler")
	b.Emit("t", nil)

	assert.Equal(t, 0, calls)
}

func TestBus_OnceFiresAtMostOnce(t *testing.T) {
	b := quietBus()
	calls := 0
	b.Once("t", func(Event) { calls++ })

	b.Emit("t", nil)
	b.Emit("t", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len("t"))
}

func TestBus_OnceNotReachedByReentrantEmit(t *testing.T) {
	b := quietBus()
	calls := 0
	b.Once("t", func(Event) {
		calls++
		b.Emit("t", nil)
	})

	b.Emit("t", nil)

	assert.Equal(t, 1, calls)
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	var logs bytes.Buffer
	b := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	reached := false

	b.On("t", func(Event) { panic("boom") })
	b.On("t", func(Event) { reached = true })

	assert.NotPanics(t, func() { b.Emit("t", nil) })
	assert.True(t, reached)
	assert.Contains(t, logs.String(), "event handler failed")
	assert.Contains(t, logs.String(), "boom")
}

func TestBus_ReentrantSubscribeDuringEmit(t *testing.T) {
	b := quietBus()
	late := 0
	b.On("t", func(Event) {
		b.On("t", func(Event) { late++ })
	})

	b.Emit("t", nil)
	assert.Equal(t, 0, late, "handler added during emit waits for the next emission")

	b.Emit("t", nil)
	assert.Equal(t, 1, late)
}

func TestBus_UnsubscribeLaterHandlerDuringEmit(t *testing.T) {
	b := quietBus()
	var second Subscription
	secondCalls := 0

	b.On("t", func(Event) { second.Unsubscribe() })
	second = b.On("t", func(Event) { secondCalls++ })

	b.Emit("t", nil)
	assert.Equal(t, 1, secondCalls, "snapshot taken before dispatch still delivers")

	b.Emit("t", nil)
	assert.Equal(t, 1, secondCalls)
}

func TestBus_Clear(t *testing.T) {
	b := quietBus()
	b.On("a", func(Event) {})
	b.On("a", func(Event) {})
	b.On("b", func(Event) {})

	b.Clear("a")
	assert.Equal(t, 0, b.Len("a"))
	assert.Equal(t, 1, b.Len("b"))

	b.ClearAll()
	assert.Equal(t, 0, b.Len("b"))
}

func TestBus_WithClockResumesSeq(t *testing.T) {
	b := New(WithClock(NewClockAt(99)))
	ev := b.Emit("t", nil)
	assert.Equal(t, int64(100), ev.Seq)
}

func TestAllTopics_Unique(t *testing.T) {
	seen := map[Topic]bool{}
	for _, topic := range AllTopics() {
		assert.False(t, seen[topic], "duplicate topic %s", topic)
		seen[topic] = true
	}
	assert.True(t, seen[TopicStateChanged])
	assert.True(t, seen[TopicEpisodeStarted])
}
