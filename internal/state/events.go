package state

// Event payloads published by GameState. Payloads are values; observers
// must treat the maps and slices inside snapshots as read-only.

// StateChanged is published on every successful Update.
type StateChanged struct {
	Old     Snapshot `json:"old"`
	New     Snapshot `json:"new"`
	Changes []Field  `json:"changes"`
}

// PhaseChanged is published when the phase flips.
type PhaseChanged struct {
	Day  int   `json:"day"`
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// ActionConsumed is published after an action is taken from a phase pool.
type ActionConsumed struct {
	Day       int   `json:"day"`
	Phase     Phase `json:"phase"`
	Remaining int   `json:"remaining"`
}

// Causes of a condition change.
const (
	CauseRest  = "rest"
	CauseDecay = "decay"
)

// ConditionChanged is published when the condition moves.
type ConditionChanged struct {
	From  Condition `json:"from"`
	To    Condition `json:"to"`
	Cause string    `json:"cause"`
}

// SkillLevelUp is published once per level gained.
type SkillLevelUp struct {
	Skill string `json:"skill"`
	Level int    `json:"level"`
}

// DishProgress is published when dish progress changes.
type DishProgress struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

// DayAdvanced is published by AdvanceDay.
type DayAdvanced struct {
	Day              int       `json:"day"`
	StaminaRecovered int       `json:"stamina_recovered"`
	ConditionDecayed bool      `json:"condition_decayed"`
	Condition        Condition `json:"condition"`
}

// Lifecycle modes of a reset.
const (
	ResetModeReset   = "reset"
	ResetModeRetry   = "retry"
	ResetModeRestore = "restore"
)

// StateReset is published by Reset, Retry and Restore.
type StateReset struct {
	Mode string `json:"mode"`
	Day  int    `json:"day"`
}
