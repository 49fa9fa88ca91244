package state

import (
	"math"

	"github.com/roach88/sprintchef/internal/eventbus"
)

func fullPatch(snap Snapshot) Patch {
	return Patch{
		Day:           Ptr(snap.Day),
		Phase:         Ptr(snap.Phase),
		DayActions:    Ptr(snap.ActionsRemaining[PhaseDay]),
		NightActions:  Ptr(snap.ActionsRemaining[PhaseNight]),
		Condition:     Ptr(snap.Condition),
		Skills:        copyInts(snap.Skills),
		Experience:    copyInts(snap.Experience),
		Stamina:       Ptr(snap.Stamina),
		TechnicalDebt: Ptr(snap.TechnicalDebt),
		DishProgress:  Ptr(snap.DishProgress),
		Mood:          Ptr(snap.Mood),
		Policy:        Ptr(snap.Policy),
		HasRestBonus:  Ptr(snap.HasRestBonus),
		PivotBonus:    Ptr(snap.PivotBonus),
		TodayActions:  append([]string{}, snap.TodayActions...),
		ActionHistory: append([]string{}, snap.ActionHistory...),
	}
}

// Reset returns the state to the configured defaults.
func (s *GameState) Reset() Snapshot {
	snap, _ := s.Update(fullPatch(s.initial()))
	s.emit(eventbus.TopicStateReset, StateReset{Mode: ResetModeReset, Day: snap.Day})
	return snap
}

// Retry restarts the run from day one, keeping a share of each skill level
// (Retry.SkillRetention, floored) with experience cleared.
func (s *GameState) Retry() Snapshot {
	next := s.initial()
	for id, lvl := range s.cur.Skills {
		next.Skills[id] = int(math.Floor(float64(lvl) * s.cfg.Retry.SkillRetention))
	}
	snap, _ := s.Update(fullPatch(next))
	s.emit(eventbus.TopicStateReset, StateReset{Mode: ResetModeRetry, Day: snap.Day})
	return snap
}

// Restore replaces the state with a persisted snapshot. Values are
// validated and clamped like any other update; skills missing from the
// snapshot are reset to zero.
func (s *GameState) Restore(snap Snapshot) (Snapshot, error) {
	if snap.ActionsRemaining == nil {
		snap.ActionsRemaining = map[Phase]int{}
	}
	p := fullPatch(snap)
	for _, id := range s.cfg.Skills.IDs {
		if _, ok := p.Skills[id]; !ok {
			p.Skills[id] = 0
		}
		if _, ok := p.Experience[id]; !ok {
			p.Experience[id] = 0
		}
	}
	if p.TodayActions == nil {
		p.TodayActions = []string{}
	}
	if p.ActionHistory == nil {
		p.ActionHistory = []string{}
	}

	out, err := s.Update(p)
	if err != nil {
		return out, err
	}
	s.emit(eventbus.TopicStateReset, StateReset{Mode: ResetModeRestore, Day: out.Day})
	return out, nil
}
