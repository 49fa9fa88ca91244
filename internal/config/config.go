// Package config holds every tunable constant of the simulation.
//
// The simulation core never hard-codes balance values: the skill curve,
// condition table, stamina and debt economies, success-rate coefficients and
// per-action definitions are all read from a Config passed in at
// construction time. A Config is treated as read-only once handed to the
// core.
//
// Sources, in order of precedence (later wins):
//
//  1. Default() (or the Casual/Hard presets)
//  2. a YAML balance file decoded over the defaults (Load, Decode)
//  3. SPRINTCHEF_* environment overrides (FromEnv)
//
// Validate checks a Config against the embedded CUE schema and a set of
// cross-reference rules (actions naming unknown skills, duplicate names).
package config

// Config is the complete balance configuration.
type Config struct {
	Version      string            `yaml:"version" json:"version"`
	Skills       SkillCurve        `yaml:"skills" json:"skills"`
	Conditions   ConditionTable    `yaml:"conditions" json:"conditions"`
	Stamina      Stamina           `yaml:"stamina" json:"stamina"`
	Debt         Debt              `yaml:"debt" json:"debt"`
	Mood         Mood              `yaml:"mood" json:"mood"`
	Success      SuccessFormula    `yaml:"success" json:"success"`
	Phases       PhaseLimits       `yaml:"phases" json:"phases"`
	Policies     map[string]Policy `yaml:"policies,omitempty" json:"policies,omitempty"`
	Actions      []ActionDef       `yaml:"actions,omitempty" json:"actions,omitempty"`
	Monotony     Monotony          `yaml:"monotony" json:"monotony"`
	History      History           `yaml:"history" json:"history"`
	Goal         Goal              `yaml:"goal" json:"goal"`
	Pivot        Pivot             `yaml:"pivot" json:"pivot"`
	Ceremony     Ceremony          `yaml:"ceremony" json:"ceremony"`
	RandomEvents RandomEvents      `yaml:"random_events" json:"random_events"`
	Episodes     []Episode         `yaml:"episodes,omitempty" json:"episodes,omitempty"`
	Retry        Retry             `yaml:"retry" json:"retry"`
}

// SkillCurve defines the trainable skills and the experience curve.
type SkillCurve struct {
	IDs         []string `yaml:"ids,omitempty" json:"ids,omitempty"`
	MaxLevel    int      `yaml:"max_level" json:"max_level"`
	ExpPerLevel int      `yaml:"exp_per_level" json:"exp_per_level"`

	// RestBonusMultiplier scales the next experience grant after a rest.
	RestBonusMultiplier float64 `yaml:"rest_bonus_multiplier" json:"rest_bonus_multiplier"`
}

// ConditionTable configures the five condition levels.
// Levels is keyed by condition name: superb, good, normal, bad, terrible.
type ConditionTable struct {
	Initial     string                    `yaml:"initial" json:"initial"`
	DecayChance float64                   `yaml:"decay_chance" json:"decay_chance"`
	Levels      map[string]ConditionLevel `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// ConditionLevel holds the multipliers of one condition and the
// distribution used when a rest tries to improve it.
type ConditionLevel struct {
	ExpMultiplier  float64 `yaml:"exp_multiplier" json:"exp_multiplier"`
	DishMultiplier float64 `yaml:"dish_multiplier" json:"dish_multiplier"`
	SuccessBonus   float64 `yaml:"success_bonus" json:"success_bonus"`

	// Transitions maps next-condition name to probability. Any mass not
	// covered (sum < 1) means the condition stays unchanged.
	Transitions map[string]float64 `yaml:"transitions,omitempty" json:"transitions,omitempty"`
}

// Stamina configures the stamina economy.
type Stamina struct {
	Max               int     `yaml:"max" json:"max"`
	Initial           int     `yaml:"initial" json:"initial"`
	OvernightRecovery int     `yaml:"overnight_recovery" json:"overnight_recovery"`
	HighThreshold     int     `yaml:"high_threshold" json:"high_threshold"`
	LowThreshold      int     `yaml:"low_threshold" json:"low_threshold"`
	HighBonus         float64 `yaml:"high_bonus" json:"high_bonus"`
	LowPenalty        float64 `yaml:"low_penalty" json:"low_penalty"`
}

// Debt configures the technical-debt accumulator.
type Debt struct {
	Max            int     `yaml:"max" json:"max"`
	Initial        int     `yaml:"initial" json:"initial"`
	FailurePenalty int     `yaml:"failure_penalty" json:"failure_penalty"`
	LowThreshold   int     `yaml:"low_threshold" json:"low_threshold"`
	HighThreshold  int     `yaml:"high_threshold" json:"high_threshold"`
	LowBonus       float64 `yaml:"low_bonus" json:"low_bonus"`
	HighPenalty    float64 `yaml:"high_penalty" json:"high_penalty"`
}

// Mood configures the mood meter.
type Mood struct {
	Max              int     `yaml:"max" json:"max"`
	Initial          int     `yaml:"initial" json:"initial"`
	PenaltyThreshold int     `yaml:"penalty_threshold" json:"penalty_threshold"`
	Penalty          float64 `yaml:"penalty" json:"penalty"`
}

// SuccessFormula holds the coefficients of the action success rate.
type SuccessFormula struct {
	Base           float64 `yaml:"base" json:"base"`
	Minimum        float64 `yaml:"minimum" json:"minimum"`
	Maximum        float64 `yaml:"maximum" json:"maximum"`
	CriticalChance float64 `yaml:"critical_chance" json:"critical_chance"`
	CrisisPenalty  float64 `yaml:"crisis_penalty" json:"crisis_penalty"`
	PivotBonus     float64 `yaml:"pivot_bonus" json:"pivot_bonus"`

	// FailureExp is the consolation experience granted per skill on failure.
	FailureExp int `yaml:"failure_exp" json:"failure_exp"`
}

// PhaseLimits sets the action pool of each phase.
type PhaseLimits struct {
	DayActions   int `yaml:"day_actions" json:"day_actions"`
	NightActions int `yaml:"night_actions" json:"night_actions"`
}

// Policy is a daily focus option.
type Policy struct {
	Label                 string  `yaml:"label" json:"label"`
	ExpMultiplier         float64 `yaml:"exp_multiplier" json:"exp_multiplier"`
	SuccessRate           float64 `yaml:"success_rate" json:"success_rate"`
	StaminaCostMultiplier float64 `yaml:"stamina_cost_multiplier" json:"stamina_cost_multiplier"`
}

// Action kinds.
const (
	KindTrain = "train"
	KindTrial = "trial"
	KindRest  = "rest"
)

// Phase names used by action definitions.
const (
	PhaseDay   = "day"
	PhaseNight = "night"
)

// ActionDef defines one player action.
type ActionDef struct {
	Name        string     `yaml:"name" json:"name"`
	Label       string     `yaml:"label" json:"label"`
	Phase       string     `yaml:"phase" json:"phase"`
	Kind        string     `yaml:"kind" json:"kind"`
	StaminaCost int        `yaml:"stamina_cost" json:"stamina_cost"`
	Base        RewardTier `yaml:"base" json:"base"`
	Critical    RewardTier `yaml:"critical" json:"critical"`

	// SkillWeights weigh skill levels into trial progress.
	SkillWeights map[string]float64 `yaml:"skill_weights,omitempty" json:"skill_weights,omitempty"`

	// Recovery and ImproveChance apply to rest actions.
	Recovery      int     `yaml:"recovery,omitempty" json:"recovery,omitempty"`
	ImproveChance float64 `yaml:"improve_chance,omitempty" json:"improve_chance,omitempty"`
}

// RewardTier is the outcome of a successful action.
type RewardTier struct {
	Exp      map[string]int `yaml:"exp,omitempty" json:"exp,omitempty"`
	Mood     int            `yaml:"mood,omitempty" json:"mood,omitempty"`
	Debt     int            `yaml:"debt,omitempty" json:"debt,omitempty"`
	Progress int            `yaml:"progress,omitempty" json:"progress,omitempty"`
}

// Monotony penalises repeating the same action within a day.
type Monotony struct {
	Streak      int `yaml:"streak" json:"streak"`
	MoodPenalty int `yaml:"mood_penalty" json:"mood_penalty"`
}

// History bounds the action history sequences.
type History struct {
	Limit int `yaml:"limit" json:"limit"`
}

// Goal is the judgement applied on the goal day.
type Goal struct {
	Day            int `yaml:"day" json:"day"`
	TargetProgress int `yaml:"target_progress" json:"target_progress"`
}

// Pivot configures the pivot offered after repeated failures.
type Pivot struct {
	FailureThreshold int `yaml:"failure_threshold" json:"failure_threshold"`
	ProgressCost     int `yaml:"progress_cost" json:"progress_cost"`
	DebtReduction    int `yaml:"debt_reduction" json:"debt_reduction"`
}

// Ceremony configures the day cycle presentation.
type Ceremony struct {
	PresentationDelayMS int `yaml:"presentation_delay_ms" json:"presentation_delay_ms"`
}

// RandomEvents is the morning event table.
type RandomEvents struct {
	Chance float64       `yaml:"chance" json:"chance"`
	Table  []RandomEvent `yaml:"table,omitempty" json:"table,omitempty"`
}

// RandomEvent is one weighted morning event.
type RandomEvent struct {
	ID      string  `yaml:"id" json:"id"`
	Message string  `yaml:"message" json:"message"`
	Weight  float64 `yaml:"weight" json:"weight"`
	Stamina int     `yaml:"stamina,omitempty" json:"stamina,omitempty"`
	Mood    int     `yaml:"mood,omitempty" json:"mood,omitempty"`
	Debt    int     `yaml:"debt,omitempty" json:"debt,omitempty"`
}

// Episode is a span of days that modifies action resolution.
type Episode struct {
	ID                    string  `yaml:"id" json:"id"`
	Name                  string  `yaml:"name" json:"name"`
	StartDay              int     `yaml:"start_day" json:"start_day"`
	EndDay                int     `yaml:"end_day" json:"end_day"`
	SuccessRate           float64 `yaml:"success_rate,omitempty" json:"success_rate,omitempty"`
	StaminaCostMultiplier float64 `yaml:"stamina_cost_multiplier,omitempty" json:"stamina_cost_multiplier,omitempty"`
	Crisis                bool    `yaml:"crisis,omitempty" json:"crisis,omitempty"`
}

// Retry configures the retry lifecycle.
type Retry struct {
	SkillRetention float64 `yaml:"skill_retention" json:"skill_retention"`
}

// ActionsFor returns the action definitions of a phase in declaration order.
func (c *Config) ActionsFor(phase string) []ActionDef {
	var out []ActionDef
	for _, a := range c.Actions {
		if a.Phase == phase {
			out = append(out, a)
		}
	}
	return out
}

// ActionLimit returns the configured action pool for a phase.
func (c *Config) ActionLimit(phase string) int {
	if phase == PhaseNight {
		return c.Phases.NightActions
	}
	return c.Phases.DayActions
}

// HasSkill reports whether id is a configured skill.
func (c *Config) HasSkill(id string) bool {
	for _, s := range c.Skills.IDs {
		if s == id {
			return true
		}
	}
	return false
}
