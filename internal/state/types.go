package state

import "github.com/roach88/sprintchef/internal/config"

// Phase is the half of the day that gates the available actions.
type Phase string

const (
	PhaseDay   Phase = config.PhaseDay
	PhaseNight Phase = config.PhaseNight
)

// Valid reports whether p is one of the two phases.
func (p Phase) Valid() bool {
	return p == PhaseDay || p == PhaseNight
}

// Condition is the five-level performance modifier.
type Condition string

const (
	ConditionSuperb   Condition = "superb"
	ConditionGood     Condition = "good"
	ConditionNormal   Condition = "normal"
	ConditionBad      Condition = "bad"
	ConditionTerrible Condition = "terrible"
)

// conditionOrder is the fixed total order from best to worst. Transition
// tables are walked in this order.
var conditionOrder = [...]Condition{
	ConditionSuperb,
	ConditionGood,
	ConditionNormal,
	ConditionBad,
	ConditionTerrible,
}

// Conditions returns every condition from best to worst.
func Conditions() []Condition {
	return conditionOrder[:]
}

// Rank returns the position of c in the best-to-worst order, or -1.
func (c Condition) Rank() int {
	for i, o := range conditionOrder {
		if o == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the five conditions.
func (c Condition) Valid() bool {
	return c.Rank() >= 0
}

// Worse returns the condition one step toward terrible.
// Terrible stays terrible.
func (c Condition) Worse() Condition {
	r := c.Rank()
	if r < 0 || r == len(conditionOrder)-1 {
		return c
	}
	return conditionOrder[r+1]
}

// Policy is the daily focus. The zero value means no focus chosen.
type Policy string

const (
	PolicyNone      Policy = ""
	PolicyQuality   Policy = "quality"
	PolicySpeed     Policy = "speed"
	PolicyChallenge Policy = "challenge"
)

// Valid reports whether p is a known policy (including none).
func (p Policy) Valid() bool {
	switch p {
	case PolicyNone, PolicyQuality, PolicySpeed, PolicyChallenge:
		return true
	}
	return false
}

// Field names a key of the state aggregate.
type Field string

const (
	FieldDay              Field = "day"
	FieldPhase            Field = "phase"
	FieldActionsRemaining Field = "actions_remaining"
	FieldCondition        Field = "condition"
	FieldSkills           Field = "skills"
	FieldExperience       Field = "experience"
	FieldStamina          Field = "stamina"
	FieldTechnicalDebt    Field = "technical_debt"
	FieldDishProgress     Field = "dish_progress"
	FieldMood             Field = "mood"
	FieldPolicy           Field = "policy"
	FieldHasRestBonus     Field = "has_rest_bonus"
	FieldPivotBonus       Field = "pivot_bonus"
	FieldTodayActions     Field = "today_actions"
	FieldActionHistory    Field = "action_history"
)

// MaxDishProgress is the cap of the dish-progress meter.
const MaxDishProgress = 100

// Snapshot is a copy of the state aggregate. Mutating a Snapshot never
// affects the GameState it came from.
type Snapshot struct {
	Day              int            `json:"day"`
	Phase            Phase          `json:"phase"`
	ActionsRemaining map[Phase]int  `json:"actions_remaining"`
	Condition        Condition      `json:"condition"`
	Skills           map[string]int `json:"skills"`
	Experience       map[string]int `json:"experience"`
	Stamina          int            `json:"stamina"`
	TechnicalDebt    int            `json:"technical_debt"`
	DishProgress     int            `json:"dish_progress"`
	Mood             int            `json:"mood"`
	Policy           Policy         `json:"policy"`
	HasRestBonus     bool           `json:"has_rest_bonus"`
	PivotBonus       bool           `json:"pivot_bonus"`
	TodayActions     []string       `json:"today_actions"`
	ActionHistory    []string       `json:"action_history"`
}

// Remaining returns the action pool of the active phase.
func (s Snapshot) Remaining() int {
	return s.ActionsRemaining[s.Phase]
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.ActionsRemaining = make(map[Phase]int, len(s.ActionsRemaining))
	for k, v := range s.ActionsRemaining {
		out.ActionsRemaining[k] = v
	}
	out.Skills = copyInts(s.Skills)
	out.Experience = copyInts(s.Experience)
	out.TodayActions = append(make([]string, 0, len(s.TodayActions)), s.TodayActions...)
	out.ActionHistory = append(make([]string, 0, len(s.ActionHistory)), s.ActionHistory...)
	return out
}

func copyInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Patch is a partial update. Nil fields are left unchanged. To clear a
// sequence, pass an empty non-nil slice. Skills and Experience entries are
// merged into the existing maps.
type Patch struct {
	Day           *int
	Phase         *Phase
	DayActions    *int
	NightActions  *int
	Condition     *Condition
	Skills        map[string]int
	Experience    map[string]int
	Stamina       *int
	TechnicalDebt *int
	DishProgress  *int
	Mood          *int
	Policy        *Policy
	HasRestBonus  *bool
	PivotBonus    *bool
	TodayActions  []string
	ActionHistory []string
}

// Ptr returns a pointer to v. Convenience for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// fields lists the keys set in p, in declaration order.
func (p Patch) fields() []Field {
	var out []Field
	if p.Day != nil {
		out = append(out, FieldDay)
	}
	if p.Phase != nil {
		out = append(out, FieldPhase)
	}
	if p.DayActions != nil || p.NightActions != nil {
		out = append(out, FieldActionsRemaining)
	}
	if p.Condition != nil {
		out = append(out, FieldCondition)
	}
	if p.Skills != nil {
		out = append(out, FieldSkills)
	}
	if p.Experience != nil {
		out = append(out, FieldExperience)
	}
	if p.Stamina != nil {
		out = append(out, FieldStamina)
	}
	if p.TechnicalDebt != nil {
		out = append(out, FieldTechnicalDebt)
	}
	if p.DishProgress != nil {
		out = append(out, FieldDishProgress)
	}
	if p.Mood != nil {
		out = append(out, FieldMood)
	}
	if p.Policy != nil {
		out = append(out, FieldPolicy)
	}
	if p.HasRestBonus != nil {
		out = append(out, FieldHasRestBonus)
	}
	if p.PivotBonus != nil {
		out = append(out, FieldPivotBonus)
	}
	if p.TodayActions != nil {
		out = append(out, FieldTodayActions)
	}
	if p.ActionHistory != nil {
		out = append(out, FieldActionHistory)
	}
	return out
}
