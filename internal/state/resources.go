package state

import "github.com/roach88/sprintchef/internal/eventbus"

// Stamina returns the current stamina.
func (s *GameState) Stamina() int {
	return s.cur.Stamina
}

// SpendStamina deducts cost. A cost larger than the current stamina is
// rejected without mutation.
func (s *GameState) SpendStamina(cost int) (int, error) {
	if cost < 0 {
		return s.cur.Stamina, s.reject("spend stamina", newError(ErrKindNegativeAmount, FieldStamina, "negative cost %d", cost))
	}
	if cost > s.cur.Stamina {
		return s.cur.Stamina, newError(ErrKindInsufficient, FieldStamina, "need %d stamina, have %d", cost, s.cur.Stamina)
	}
	if cost == 0 {
		return s.cur.Stamina, nil
	}
	left := s.cur.Stamina - cost
	if _, err := s.Update(Patch{Stamina: &left}); err != nil {
		return s.cur.Stamina, err
	}
	return s.cur.Stamina, nil
}

// RecoverStamina adds amount, clamped to the maximum, and returns the
// stamina actually recovered.
func (s *GameState) RecoverStamina(amount int) (int, error) {
	if amount < 0 {
		return 0, s.reject("recover stamina", newError(ErrKindNegativeAmount, FieldStamina, "negative recovery %d", amount))
	}
	before := s.cur.Stamina
	after, err := s.Adjust(FieldStamina, float64(amount))
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// AddDishProgress moves dish progress by delta (negative for pivot costs),
// clamped to [0, 100]. Returns the actual change and publishes
// dish-progress when it is non-zero.
func (s *GameState) AddDishProgress(delta int) (int, error) {
	before := s.cur.DishProgress
	after, err := s.Adjust(FieldDishProgress, float64(delta))
	if err != nil {
		return 0, err
	}
	if after != before {
		s.emit(eventbus.TopicDishProgress, DishProgress{Before: before, After: after, Delta: after - before})
	}
	return after - before, nil
}

// SetPolicy sets the daily focus.
func (s *GameState) SetPolicy(p Policy) error {
	_, err := s.Update(Patch{Policy: &p})
	return err
}

// SetRestBonus arms or clears the rest bonus.
func (s *GameState) SetRestBonus(on bool) {
	if s.cur.HasRestBonus == on {
		return
	}
	_, _ = s.Update(Patch{HasRestBonus: &on})
}

// SetPivotBonus arms or clears the pivot bonus.
func (s *GameState) SetPivotBonus(on bool) {
	if s.cur.PivotBonus == on {
		return
	}
	_, _ = s.Update(Patch{PivotBonus: &on})
}

// ConsumePivotBonus clears the pivot bonus and reports whether it was set.
func (s *GameState) ConsumePivotBonus() bool {
	if !s.cur.PivotBonus {
		return false
	}
	s.SetPivotBonus(false)
	return true
}

// RecordAction appends name to today's actions and the run history.
func (s *GameState) RecordAction(name string) {
	today := append(append([]string{}, s.cur.TodayActions...), name)
	history := append(append([]string{}, s.cur.ActionHistory...), name)
	_, _ = s.Update(Patch{TodayActions: today, ActionHistory: history})
}

// Streak returns how many times name appears at the end of today's
// actions without interruption.
func (s *GameState) Streak(name string) int {
	n := 0
	for i := len(s.cur.TodayActions) - 1; i >= 0; i-- {
		if s.cur.TodayActions[i] != name {
			break
		}
		n++
	}
	return n
}

// CountToday returns how many times name was taken today.
func (s *GameState) CountToday(name string) int {
	n := 0
	for _, a := range s.cur.TodayActions {
		if a == name {
			n++
		}
	}
	return n
}
