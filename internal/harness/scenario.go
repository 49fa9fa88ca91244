package harness

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sprintchef/internal/config"
)

// Scenario is a scripted run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Preset selects the base balance (default, casual, hard).
	Preset string `yaml:"preset,omitempty"`

	// Config holds partial balance overrides decoded over the preset.
	Config yaml.Node `yaml:"config,omitempty"`

	// Seed seeds the random source when Rolls is empty.
	Seed int64 `yaml:"seed,omitempty"`

	// Rolls are scripted draws in [0, 1), cycled in order.
	Rolls []float64 `yaml:"rolls,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpStart        = "start"
	OpFocus        = "focus"
	OpAction       = "action"
	OpNight        = "night"
	OpPending      = "pending"
	OpProceed      = "proceed"
	OpAdvance      = "advance"
	OpPivotAccept  = "pivot_accept"
	OpPivotDecline = "pivot_decline"
)

// Step is one call against the simulation.
type Step struct {
	Do     string  `yaml:"do"`
	Arg    string  `yaml:"arg,omitempty"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is checked right after a step. Nil fields are not checked.
type Expect struct {
	// Success, Critical and Reason check the result of an action step.
	Success  *bool   `yaml:"success,omitempty"`
	Critical *bool   `yaml:"critical,omitempty"`
	Reason   *string `yaml:"reason,omitempty"`

	// Error is the expected ceremony error code; "" expects no error.
	Error *string `yaml:"error,omitempty"`

	Stage     *string `yaml:"stage,omitempty"`
	Day       *int    `yaml:"day,omitempty"`
	Phase     *string `yaml:"phase,omitempty"`
	Remaining *int    `yaml:"remaining,omitempty"`

	// Pivot checks whether a pivot is on offer.
	Pivot *bool `yaml:"pivot,omitempty"`

	// Ran checks how many deferred tasks a pending step ran.
	Ran *int `yaml:"ran,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Topic is used by trace_contains and trace_count.
	Topic string `yaml:"topic,omitempty"`

	// Match is a substring of the event summary (trace_contains).
	Match string `yaml:"match,omitempty"`

	// Topics is the expected order (trace_order).
	Topics []string `yaml:"topics,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect holds expected final values (final_state). Keys are JSON
	// field names of the snapshot; nested maps use dotted keys.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// BuildConfig returns the preset with the scenario overrides applied.
func (s *Scenario) BuildConfig() (config.Config, error) {
	base, ok := config.Preset(s.Preset)
	if !ok {
		return config.Config{}, fmt.Errorf("unknown preset %q", s.Preset)
	}
	if s.Config.Kind == 0 {
		return base, nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("encode config overrides: %w", err)
	}
	return config.Decode(data, base)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if _, ok := config.Preset(s.Preset); !ok {
		return fmt.Errorf("unknown preset %q", s.Preset)
	}

	for i, r := range s.Rolls {
		if r < 0 || r >= 1 {
			return fmt.Errorf("rolls[%d]: %v is outside [0, 1)", i, r)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step) error {
	switch step.Do {
	case OpFocus, OpAction:
		if step.Arg == "" {
			return fmt.Errorf("steps[%d]: arg is required for %s", index, step.Do)
		}
	case OpPending:
		if step.Arg == "" {
			return nil
		}
		if ms, err := strconv.Atoi(step.Arg); err != nil || ms < 0 {
			return fmt.Errorf("steps[%d]: pending arg must be a non-negative millisecond count, got %q", index, step.Arg)
		}
	case OpStart, OpNight, OpProceed, OpAdvance, OpPivotAccept, OpPivotDecline:
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown step %q", index, step.Do)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Topic == "" {
			return fmt.Errorf("assertions[%d]: topic is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Topics) == 0 {
			return fmt.Errorf("assertions[%d]: topics list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Topic == "" {
			return fmt.Errorf("assertions[%d]: topic is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
