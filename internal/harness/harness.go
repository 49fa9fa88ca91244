package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/roach88/sprintchef/internal/ceremony"
	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/engine"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
	"github.com/roach88/sprintchef/internal/state"
	"github.com/roach88/sprintchef/internal/testutil"
)

// Harness holds one scenario's simulation.
type Harness struct {
	bus      *eventbus.Bus
	state    *state.GameState
	engine   *engine.Engine
	ceremony *ceremony.Manager
	clock    *testutil.FakeClock
	logger   *slog.Logger
}

// observation is what a step produced, checked against its Expect.
type observation struct {
	result *engine.Result
	err    error
	ran    int
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the balance config from preset and overrides, and validate it
// 2. Wire bus, trace recorder, state, engine and ceremony manager
// 3. Execute steps, checking each step's expect clause
// 4. Evaluate assertions against the trace and final state
//
// An error is returned only when the scenario cannot be run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.BuildConfig()
	if err != nil {
		return nil, fmt.Errorf("build config: %w", err)
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", errs[0].Error())
	}

	var src rng.Source
	if len(scenario.Rolls) > 0 {
		src = testutil.NewRolls(scenario.Rolls...)
	} else {
		src = rng.NewSeeded(scenario.Seed)
	}

	// Suppress logs in scenario runs
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := NewResult()
	bus := eventbus.New(eventbus.WithLogger(logger))

	rec := &recorder{result: result}
	rec.attach(bus)
	defer rec.detach()

	gs := state.New(cfg, bus, src, state.WithLogger(logger))
	rec.day = gs.Day

	eng, err := engine.New(gs, src, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	clock := testutil.NewFakeClock(testutil.Epoch)
	mgr := ceremony.New(gs, src, ceremony.WithClock(clock), ceremony.WithLogger(logger))
	defer mgr.Close()

	h := &Harness{
		bus:      bus,
		state:    gs,
		engine:   eng,
		ceremony: mgr,
		clock:    clock,
		logger:   logger,
	}

	for i, step := range scenario.Steps {
		obs := h.execute(step)
		obs.ran += mgr.RunPending()
		if step.Expect != nil {
			for _, msg := range h.checkExpect(step, *step.Expect, obs) {
				result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Do, msg))
			}
		} else if obs.err != nil {
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Do, obs.err))
		}
	}

	final, err := h.finalState()
	if err != nil {
		return nil, err
	}
	result.State = final

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(step Step) observation {
	var obs observation
	switch step.Do {
	case OpStart:
		_, obs.err = h.ceremony.StartNewDay()
	case OpFocus:
		p := state.Policy(step.Arg)
		if step.Arg == "none" {
			p = state.PolicyNone
		}
		obs.err = h.ceremony.SelectDailyFocus(p)
	case OpAction:
		res := h.engine.ExecuteAction(step.Arg)
		obs.result = &res
	case OpNight:
		obs.err = h.ceremony.EnterNight()
	case OpPending:
		ms, _ := strconv.Atoi(step.Arg)
		h.clock.Advance(time.Duration(ms) * time.Millisecond)
		obs.ran = h.ceremony.RunPending()
	case OpProceed:
		_, obs.err = h.ceremony.ProceedToNextDay()
	case OpAdvance:
		h.state.AdvanceDay()
	case OpPivotAccept:
		obs.err = h.ceremony.AcceptPivot()
	case OpPivotDecline:
		obs.err = h.ceremony.DeclinePivot()
	}
	return obs
}

// finalState flattens the final snapshot into JSON values and adds the
// ceremony stage and the run outcome.
func (h *Harness) finalState() (map[string]any, error) {
	data, err := json.Marshal(h.state.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("encode final state: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode final state: %w", err)
	}

	out := make(map[string]any, len(raw)+3)
	flatten("", raw, out)
	out["stage"] = string(h.ceremony.Stage())

	ended, victory, reason := h.ceremony.Outcome()
	switch {
	case victory:
		out["outcome"] = "victory"
	case ended:
		out["outcome"] = "game_over"
	default:
		out["outcome"] = "running"
	}
	out["reason"] = string(reason)
	return out, nil
}

// flatten copies m into out, joining nested map keys with dots.
func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}
