package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Validation error codes (E200-E299)
const (
	ErrSchema = "E200" // value rejected by the CUE schema

	// Cross-reference errors (E201-E209)
	ErrUnknownSkill       = "E201" // reward or weight names an unconfigured skill
	ErrDuplicateAction    = "E202" // two actions share a name within a phase
	ErrEmptyPhase         = "E203" // a phase has no actions
	ErrMissingCondition   = "E204" // condition level missing from the table
	ErrTransitionMass     = "E205" // transition probabilities sum above 1
	ErrInitialAboveMax    = "E206" // initial meter value exceeds its max
	ErrInvertedBounds     = "E207" // minimum above maximum
	ErrEpisodeRange       = "E208" // episode ends before it starts
	ErrDuplicateSkill     = "E209" // skill listed twice
	ErrNoSkills           = "E210" // skill list empty
	ErrThresholdInversion = "E211" // low threshold above high threshold
	ErrNumericActionName  = "E212" // action name reads as a menu index
)

// ConditionNames lists the condition levels from best to worst.
var ConditionNames = []string{"superb", "good", "normal", "bad", "terrible"}

// ValidationError is one problem found in a Config.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	schemaOnce sync.Once
	schemaDef  cue.Value
	schemaErr  error
)

func configSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Config"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Config: %w", err)
		}
	})
	return schemaDef, schemaErr
}

// Validate checks cfg against the embedded schema and the cross-reference
// rules. Returns all errors found (does not fail-fast).
func Validate(cfg Config) []ValidationError {
	errs := validateSchema(cfg)
	return append(errs, validateRules(cfg)...)
}

func validateSchema(cfg Config) []ValidationError {
	def, err := configSchema()
	if err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrSchema}}
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return []ValidationError{{Field: "config", Message: err.Error(), Code: ErrSchema}}
	}

	val := def.Context().CompileBytes(data, cue.Filename("config.json"))
	if err := val.Err(); err != nil {
		return cueValidationErrors(err)
	}
	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return cueValidationErrors(err)
	}
	return nil
}

func cueValidationErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		out = append(out, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Code:    ErrSchema,
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "config", Message: err.Error(), Code: ErrSchema})
	}
	return out
}

func validateRules(cfg Config) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if len(cfg.Skills.IDs) == 0 {
		add("skills.ids", ErrNoSkills, "at least one skill is required")
	}
	seenSkill := make(map[string]bool)
	for _, id := range cfg.Skills.IDs {
		if seenSkill[id] {
			add("skills.ids", ErrDuplicateSkill, "skill %q listed more than once", id)
		}
		seenSkill[id] = true
	}

	for _, name := range ConditionNames {
		level, ok := cfg.Conditions.Levels[name]
		if !ok {
			add("conditions.levels."+name, ErrMissingCondition, "condition %q is not configured", name)
			continue
		}
		var mass float64
		for _, p := range level.Transitions {
			mass += p
		}
		if mass > 1+1e-9 {
			add("conditions.levels."+name+".transitions", ErrTransitionMass,
				"transition probabilities sum to %.3f", mass)
		}
	}

	checkMax := func(field string, initial, max int) {
		if initial > max {
			add(field, ErrInitialAboveMax, "initial %d exceeds max %d", initial, max)
		}
	}
	checkMax("stamina.initial", cfg.Stamina.Initial, cfg.Stamina.Max)
	checkMax("debt.initial", cfg.Debt.Initial, cfg.Debt.Max)
	checkMax("mood.initial", cfg.Mood.Initial, cfg.Mood.Max)

	if cfg.Stamina.LowThreshold > cfg.Stamina.HighThreshold {
		add("stamina.low_threshold", ErrThresholdInversion, "low threshold %d above high threshold %d",
			cfg.Stamina.LowThreshold, cfg.Stamina.HighThreshold)
	}
	if cfg.Debt.LowThreshold > cfg.Debt.HighThreshold {
		add("debt.low_threshold", ErrThresholdInversion, "low threshold %d above high threshold %d",
			cfg.Debt.LowThreshold, cfg.Debt.HighThreshold)
	}
	if cfg.Success.Minimum > cfg.Success.Maximum || math.IsNaN(cfg.Success.Minimum) {
		add("success.minimum", ErrInvertedBounds, "minimum %.2f above maximum %.2f",
			cfg.Success.Minimum, cfg.Success.Maximum)
	}

	seenAction := make(map[string]bool)
	perPhase := make(map[string]int)
	for i, a := range cfg.Actions {
		field := fmt.Sprintf("actions[%d]", i)
		key := a.Phase + "/" + a.Name
		if seenAction[key] {
			add(field+".name", ErrDuplicateAction, "action %q declared twice in phase %s", a.Name, a.Phase)
		}
		seenAction[key] = true
		perPhase[a.Phase]++
		if _, err := strconv.Atoi(strings.TrimSpace(a.Name)); err == nil {
			add(field+".name", ErrNumericActionName, "action name %q is a number", a.Name)
		}

		for _, tier := range []struct {
			name string
			exp  map[string]int
		}{{"base", a.Base.Exp}, {"critical", a.Critical.Exp}} {
			for skill := range tier.exp {
				if !seenSkill[skill] {
					add(field+"."+tier.name+".exp", ErrUnknownSkill, "unknown skill %q", skill)
				}
			}
		}
		for skill := range a.SkillWeights {
			if !seenSkill[skill] {
				add(field+".skill_weights", ErrUnknownSkill, "unknown skill %q", skill)
			}
		}
	}
	for _, phase := range []string{PhaseDay, PhaseNight} {
		if perPhase[phase] == 0 {
			add("actions", ErrEmptyPhase, "phase %s has no actions", phase)
		}
	}

	for i, ep := range cfg.Episodes {
		if ep.EndDay < ep.StartDay {
			add(fmt.Sprintf("episodes[%d]", i), ErrEpisodeRange,
				"episode %q ends on day %d before it starts on day %d", ep.ID, ep.EndDay, ep.StartDay)
		}
	}

	return errs
}
