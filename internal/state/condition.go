package state

import (
	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
)

// Condition returns the current condition.
func (s *GameState) Condition() Condition {
	return s.cur.Condition
}

// ConditionLevel returns the configured multipliers of the current condition.
// An unconfigured level behaves as neutral.
func (s *GameState) ConditionLevel() config.ConditionLevel {
	if lvl, ok := s.cfg.Conditions.Levels[string(s.cur.Condition)]; ok {
		return lvl
	}
	return config.ConditionLevel{ExpMultiplier: 1, DishMultiplier: 1}
}

// TryImproveCondition runs the condition roll: one uniform draw is compared
// against the cumulative transition probabilities of the current condition,
// walked from superb to terrible. The first condition whose cumulative
// probability exceeds the draw is selected. Unassigned mass keeps the
// condition unchanged.
//
// Returns the resulting condition and whether it changed.
func (s *GameState) TryImproveCondition() (Condition, bool) {
	from := s.cur.Condition
	transitions := s.ConditionLevel().Transitions
	roll := s.rng.Float64()

	to := from
	cum := 0.0
	for _, c := range conditionOrder {
		cum += transitions[string(c)]
		if roll < cum {
			to = c
			break
		}
	}

	s.logger.Debug("condition roll",
		"from", string(from),
		"to", string(to),
		"roll", roll,
	)
	if to == from {
		return from, false
	}
	s.setCondition(from, to, CauseRest)
	return to, true
}

// DecayCondition moves the condition one step toward terrible.
// Returns the resulting condition and whether it changed.
func (s *GameState) DecayCondition() (Condition, bool) {
	from := s.cur.Condition
	to := from.Worse()
	if to == from {
		return from, false
	}
	s.setCondition(from, to, CauseDecay)
	return to, true
}

func (s *GameState) setCondition(from, to Condition, cause string) {
	if _, err := s.Update(Patch{Condition: &to}); err != nil {
		return
	}
	s.emit(eventbus.TopicConditionChange, ConditionChanged{From: from, To: to, Cause: cause})
}

func (s *GameState) emit(topic eventbus.Topic, payload any) {
	if s.bus != nil {
		s.bus.Emit(topic, payload)
	}
}
