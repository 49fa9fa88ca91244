package ceremony

import "github.com/roach88/sprintchef/internal/state"

// Stage is a step of the day ceremony.
type Stage string

const (
	StageIdle    Stage = "idle"
	StageMorning Stage = "morning"
	StageAction  Stage = "action"
	StageNight   Stage = "night"
	StageEnded   Stage = "ended"
)

// FocusOption is one daily focus offered in the morning.
type FocusOption struct {
	Policy                state.Policy `json:"policy"`
	Label                 string       `json:"label"`
	ExpMultiplier         float64      `json:"exp_multiplier"`
	SuccessRate           float64      `json:"success_rate"`
	StaminaCostMultiplier float64      `json:"stamina_cost_multiplier"`
}

// StageChanged is the ceremony-changed payload.
type StageChanged struct {
	From Stage `json:"from"`
	To   Stage `json:"to"`
	Day  int   `json:"day"`
}

// PivotOffer is the pivot-offered payload.
type PivotOffer struct {
	Day           int    `json:"day"`
	Action        string `json:"action"`
	Failures      int    `json:"failures"`
	ProgressCost  int    `json:"progress_cost"`
	DebtReduction int    `json:"debt_reduction"`
}

// PivotResolution is the pivot-resolved payload.
type PivotResolution struct {
	Day           int    `json:"day"`
	Action        string `json:"action"`
	Accepted      bool   `json:"accepted"`
	ProgressDelta int    `json:"progress_delta"`
	DebtDelta     int    `json:"debt_delta"`
}

// RandomEvent is the random-event payload.
type RandomEvent struct {
	Day     int    `json:"day"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Stamina int    `json:"stamina"`
	Mood    int    `json:"mood"`
	Debt    int    `json:"debt"`
}

// Retrospective compares the end of a day with its start.
type Retrospective struct {
	Day             int             `json:"day"`
	Actions         []string        `json:"actions"`
	Failures        map[string]int  `json:"failures,omitempty"`
	StaminaDelta    int             `json:"stamina_delta"`
	DebtDelta       int             `json:"debt_delta"`
	MoodDelta       int             `json:"mood_delta"`
	ProgressDelta   int             `json:"progress_delta"`
	LevelsGained    map[string]int  `json:"levels_gained,omitempty"`
	ConditionBefore state.Condition `json:"condition_before"`
	ConditionAfter  state.Condition `json:"condition_after"`
}

// GameOver is the game-over payload.
type GameOver struct {
	Day    int                  `json:"day"`
	Reason state.GameOverReason `json:"reason"`
}

// Victory is the victory payload.
type Victory struct {
	Day          int `json:"day"`
	DishProgress int `json:"dish_progress"`
}
