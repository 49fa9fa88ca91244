package state

import (
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
)

// Day returns the current day.
func (s *GameState) Day() int {
	return s.cur.Day
}

// Phase returns the active phase.
func (s *GameState) Phase() Phase {
	return s.cur.Phase
}

// Remaining returns the action pool of the active phase.
func (s *GameState) Remaining() int {
	return s.cur.Remaining()
}

// ConsumeAction takes one action from the active phase's pool.
// Returns false without mutating anything if the pool is empty.
func (s *GameState) ConsumeAction() bool {
	phase := s.cur.Phase
	left := s.cur.ActionsRemaining[phase]
	if left <= 0 {
		return false
	}
	left--

	p := Patch{DayActions: &left}
	if phase == PhaseNight {
		p = Patch{NightActions: &left}
	}
	if _, err := s.Update(p); err != nil {
		return false
	}
	s.emit(eventbus.TopicActionConsumed, ActionConsumed{Day: s.cur.Day, Phase: phase, Remaining: left})
	return true
}

// TransitionToNight switches to the night phase and refills the night pool.
// The day is not touched. Returns false if the phase is already night.
func (s *GameState) TransitionToNight() bool {
	if s.cur.Phase == PhaseNight {
		return false
	}
	night := s.cfg.Phases.NightActions
	if _, err := s.Update(Patch{Phase: Ptr(PhaseNight), NightActions: &night}); err != nil {
		return false
	}
	s.emit(eventbus.TopicPhaseChanged, PhaseChanged{Day: s.cur.Day, From: PhaseDay, To: PhaseNight})
	return true
}

// AdvanceDay starts the next day: the day counter increments, overnight
// stamina recovery is applied (clamped), the daily decay roll runs, both
// action pools are refilled, the phase returns to day and the per-day
// policy, rest bonus and action list are cleared. A pending pivot bonus
// survives into the new day.
//
// Nothing in the simulation calls AdvanceDay on its own. It is the explicit
// trigger owned by the orchestrator.
func (s *GameState) AdvanceDay() DayAdvanced {
	from := s.cur.Phase
	fromCond := s.cur.Condition

	stamina := clampInt(s.cur.Stamina+s.cfg.Stamina.OvernightRecovery, 0, s.cfg.Stamina.Max)
	recovered := stamina - s.cur.Stamina

	cond := fromCond
	if rng.Chance(s.rng, s.cfg.Conditions.DecayChance) {
		cond = fromCond.Worse()
	}

	day := s.cur.Day + 1
	p := Patch{
		Day:          &day,
		Phase:        Ptr(PhaseDay),
		DayActions:   Ptr(s.cfg.Phases.DayActions),
		NightActions: Ptr(s.cfg.Phases.NightActions),
		Stamina:      &stamina,
		Condition:    &cond,
		Policy:       Ptr(PolicyNone),
		HasRestBonus: Ptr(false),
		TodayActions: []string{},
	}
	if _, err := s.Update(p); err != nil {
		return DayAdvanced{Day: s.cur.Day, Condition: s.cur.Condition}
	}

	if from != PhaseDay {
		s.emit(eventbus.TopicPhaseChanged, PhaseChanged{Day: day, From: from, To: PhaseDay})
	}
	decayed := cond != fromCond
	if decayed {
		s.emit(eventbus.TopicConditionChange, ConditionChanged{From: fromCond, To: cond, Cause: CauseDecay})
	}

	ev := DayAdvanced{
		Day:              day,
		StaminaRecovered: recovered,
		ConditionDecayed: decayed,
		Condition:        cond,
	}
	s.logger.Debug("day advanced",
		"day", day,
		"stamina_recovered", recovered,
		"condition", string(cond),
	)
	s.emit(eventbus.TopicDayAdvanced, ev)
	return ev
}
