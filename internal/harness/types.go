package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sprintchef/internal/eventbus"
)

// TraceEvent is one recorded emission.
type TraceEvent struct {
	Seq     int64          `json:"seq"`
	Topic   eventbus.Topic `json:"topic"`
	Day     int            `json:"day"`
	Summary string         `json:"summary,omitempty"`
	Payload any            `json:"-"`
}

// Line renders the event the way golden files store it.
func (e TraceEvent) Line() string {
	if e.Summary == "" {
		return string(e.Topic)
	}
	return fmt.Sprintf("%s %s", e.Topic, e.Summary)
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every event except state-changed, in emission order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final snapshot flattened to JSON values, plus "stage",
	// "outcome" and "reason".
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Render returns the trace as golden-file text, one event per line.
func (r *Result) Render() string {
	var b strings.Builder
	for _, ev := range r.Trace {
		b.WriteString(ev.Line())
		b.WriteByte('\n')
	}
	return b.String()
}
