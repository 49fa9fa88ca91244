package eventbus

// Topic names an event stream. Topic values are stable strings because
// they are persisted by the journal and compared in golden traces.
type Topic string

// Core topics announced by the simulation.
const (
	TopicStateChanged    Topic = "state-changed"
	TopicPhaseChanged    Topic = "phase-changed"
	TopicActionExecuted  Topic = "action-executed"
	TopicConditionChange Topic = "condition-changed"
	TopicSkillLevelUp    Topic = "skill-level-up"
	TopicDishProgress    Topic = "dish-progress"
	TopicActionConsumed  Topic = "action-consumed"
	TopicDayAdvanced     Topic = "day-advanced"
	TopicGameOver        Topic = "game-over"
	TopicVictory         Topic = "victory"
	TopicEpisodeStarted  Topic = "episode-started"
)

// Ceremony and lifecycle topics.
const (
	TopicCriticalSuccess Topic = "critical-success"
	TopicCeremonyChanged Topic = "ceremony-changed"
	TopicPivotOffered    Topic = "pivot-offered"
	TopicPivotResolved   Topic = "pivot-resolved"
	TopicRetrospective   Topic = "retrospective"
	TopicRandomEvent     Topic = "random-event"
	TopicStateReset      Topic = "state-reset"
)

// AllTopics lists every topic in a fixed order. Used by observers that
// record the whole stream (journal, harness trace).
func AllTopics() []Topic {
	return []Topic{
		TopicStateChanged,
		TopicPhaseChanged,
		TopicActionExecuted,
		TopicConditionChange,
		TopicSkillLevelUp,
		TopicDishProgress,
		TopicActionConsumed,
		TopicDayAdvanced,
		TopicGameOver,
		TopicVictory,
		TopicEpisodeStarted,
		TopicCriticalSuccess,
		TopicCeremonyChanged,
		TopicPivotOffered,
		TopicPivotResolved,
		TopicRetrospective,
		TopicRandomEvent,
		TopicStateReset,
	}
}
