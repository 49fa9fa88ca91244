package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/sprintchef/internal/ceremony"
	"github.com/roach88/sprintchef/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event.Line())
		}
	}

	return buf.String()
}

// assertTraceContains checks that an event of the topic has a summary
// containing the match substring.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if string(event.Topic) == assertion.Topic && strings.Contains(event.Summary, assertion.Match) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s matching %q", assertion.Topic, assertion.Match),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that topics first appear in the given order.
// Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		topic := string(event.Topic)
		if _, seen := positions[topic]; !seen {
			positions[topic] = i + 1 // 1-indexed for readability
		}
	}

	for _, topic := range assertion.Topics {
		if positions[topic] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all topics present: %v", assertion.Topics),
				Actual:   fmt.Sprintf("missing topic: %s", topic),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Topics); i++ {
		prev := assertion.Topics[i-1]
		curr := assertion.Topics[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("topics in order: %v", assertion.Topics),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that a topic appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if string(event.Topic) == assertion.Topic {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s %d times", assertion.Topic, assertion.Count),
			Actual:   fmt.Sprintf("found %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks the expected fields against the final state
// (subset semantics). Keys are checked in sorted order so the first
// reported mismatch is stable.
func assertFinalState(final map[string]any, assertion Assertion) error {
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expected := assertion.Expect[key]
		actual, exists := final[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   "field not present in final state",
			}
		}
		if !valuesEqual(actual, expected) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actual, actual),
			}
		}
	}
	return nil
}

// valuesEqual compares a decoded JSON value with a YAML expectation.
// JSON numbers decode as float64 while YAML integers decode as int.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	if a, ok := toFloat(actual); ok {
		if e, ok := toFloat(expected); ok {
			return a == e
		}
		return false
	}

	if as, ok := actual.([]any); ok {
		es, ok := expected.([]any)
		if !ok || len(as) != len(es) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], es[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// checkExpect compares one step's observation with its expect clause.
func (h *Harness) checkExpect(step Step, exp Expect, obs observation) []string {
	var msgs []string
	mismatch := func(field string, want, got any) {
		msgs = append(msgs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if exp.Success != nil || exp.Critical != nil || exp.Reason != nil {
		if obs.result == nil {
			msgs = append(msgs, "success/critical/reason only apply to action steps")
		} else {
			res := *obs.result
			if exp.Success != nil && *exp.Success != res.Success {
				mismatch("success", *exp.Success, res.Success)
			}
			if exp.Critical != nil && *exp.Critical != res.Critical {
				mismatch("critical", *exp.Critical, res.Critical)
			}
			if exp.Reason != nil && engine.Reason(*exp.Reason) != res.Reason {
				mismatch("reason", *exp.Reason, res.Reason)
			}
		}
	}

	if exp.Error != nil {
		if got := string(ceremony.CodeOf(obs.err)); got != *exp.Error {
			mismatch("error", *exp.Error, got)
		}
	} else if obs.err != nil {
		msgs = append(msgs, fmt.Sprintf("unexpected error: %v", obs.err))
	}

	if exp.Stage != nil && string(h.ceremony.Stage()) != *exp.Stage {
		mismatch("stage", *exp.Stage, h.ceremony.Stage())
	}
	if exp.Day != nil && h.state.Day() != *exp.Day {
		mismatch("day", *exp.Day, h.state.Day())
	}
	if exp.Phase != nil && string(h.state.Phase()) != *exp.Phase {
		mismatch("phase", *exp.Phase, h.state.Phase())
	}
	if exp.Remaining != nil && h.state.Remaining() != *exp.Remaining {
		mismatch("remaining", *exp.Remaining, h.state.Remaining())
	}
	if exp.Pivot != nil {
		_, open := h.ceremony.PendingPivot()
		if open != *exp.Pivot {
			mismatch("pivot", *exp.Pivot, open)
		}
	}
	if exp.Ran != nil && obs.ran != *exp.Ran {
		mismatch("ran", *exp.Ran, obs.ran)
	}
	return msgs
}
