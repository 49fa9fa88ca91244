package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/eventbus"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Topic: eventbus.TopicCeremonyChanged, Summary: "idle -> morning day=1"},
		{Seq: 3, Topic: eventbus.TopicActionExecuted, Summary: "prep failed"},
		{Seq: 6, Topic: eventbus.TopicActionExecuted, Summary: "prep success"},
		{Seq: 9, Topic: eventbus.TopicRetrospective, Summary: "day=1 actions=prep,prep"},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Topic: "action-executed", Match: "prep success"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Topic: "retrospective"}))

	err := assertTraceContains(trace, Assertion{Topic: "action-executed", Match: "critical"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in trace")
	assert.Contains(t, err.Error(), "[2] action-executed prep failed")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Topics: []string{"ceremony-changed", "action-executed", "retrospective"}}))

	err := assertTraceOrder(trace, Assertion{Topics: []string{"retrospective", "action-executed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should be before")

	err = assertTraceOrder(trace, Assertion{Topics: []string{"victory"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing topic: victory")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Topic: "action-executed", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Topic: "victory", Count: 0}))

	err := assertTraceCount(trace, Assertion{Topic: "action-executed", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2 times")
}

func TestAssertFinalState(t *testing.T) {
	final := map[string]any{
		"day":              float64(2),
		"stage":            "morning",
		"pivot_bonus":      false,
		"experience.knife": float64(12),
		"today_actions":    []any{},
		"action_history":   []any{"prep", "rest"},
	}

	assert.NoError(t, assertFinalState(final, Assertion{Expect: map[string]any{
		"day":              2,
		"stage":            "morning",
		"pivot_bonus":      false,
		"experience.knife": 12,
		"today_actions":    []any{},
		"action_history":   []any{"prep", "rest"},
	}}))

	err := assertFinalState(final, Assertion{Expect: map[string]any{"day": 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "day" = 3`)

	err = assertFinalState(final, Assertion{Expect: map[string]any{"mood": 70}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not present")

	err = assertFinalState(final, Assertion{Expect: map[string]any{"stage": 1}})
	assert.Error(t, err)
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Topic: "victory", Count: 1},
		{Type: AssertTraceContains, Topic: "retrospective"},
		{Type: "bogus"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[1], `unknown assertion type "bogus"`)
}

func TestResult_Render(t *testing.T) {
	result := NewResult()
	result.Trace = []TraceEvent{
		{Topic: eventbus.TopicVictory, Summary: "day=3 progress=100"},
		{Topic: eventbus.TopicStateReset},
	}
	assert.Equal(t, "victory day=3 progress=100\nstate-reset\n", result.Render())

	result.AddError("boom")
	assert.False(t, result.Pass)
}
