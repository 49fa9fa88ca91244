package engine

import "github.com/roach88/sprintchef/internal/state"

// Reason explains why an action was rejected. Executed actions, successful
// or not, carry ReasonNone.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonGameOver            Reason = "game_over"
	ReasonNoActions           Reason = "no_actions"
	ReasonUnknownAction       Reason = "unknown_action"
	ReasonInsufficientStamina Reason = "insufficient_stamina"
)

// Result is the outcome of one ExecuteAction call. It is also the
// action-executed payload.
type Result struct {
	Success  bool   `json:"success"`
	Critical bool   `json:"critical"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message"`

	Action  string      `json:"action"`
	Label   string      `json:"label,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Phase   state.Phase `json:"phase"`
	Day     int         `json:"day"`
	Episode string      `json:"episode,omitempty"`

	SuccessRate      float64      `json:"success_rate"`
	StaminaCost      int          `json:"stamina_cost"`
	StaminaRecovered int          `json:"stamina_recovered"`
	Gains            []state.Gain `json:"gains,omitempty"`
	ExpGained        int          `json:"exp_gained"`
	LevelUps         int          `json:"level_ups"`
	ProgressGained   int          `json:"progress_gained"`
	DebtDelta        int          `json:"debt_delta"`
	MoodDelta        int          `json:"mood_delta"`
	Monotony         bool         `json:"monotony,omitempty"`
	PivotBonusUsed   bool         `json:"pivot_bonus_used,omitempty"`

	ConditionBefore state.Condition `json:"condition_before"`
	ConditionAfter  state.Condition `json:"condition_after"`
	Remaining       int             `json:"remaining"`
}

// Rejected reports whether the action was refused without touching state.
func (r Result) Rejected() bool {
	return r.Reason != ReasonNone
}

// Choice describes an available action with its current cost and odds.
type Choice struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Kind        string  `json:"kind"`
	StaminaCost int     `json:"stamina_cost"`
	SuccessRate float64 `json:"success_rate"`
	Affordable  bool    `json:"affordable"`
}
