package engine

import (
	"fmt"
	"math"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/episode"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
	"github.com/roach88/sprintchef/internal/state"
)

// Turn carries one action through its handler.
type Turn struct {
	engine *Engine
	opts   callOptions
	result Result

	// Entry is the resolved action.
	Entry *Entry

	// Before is the state when the action was chosen. Success-rate terms
	// read from it.
	Before state.Snapshot

	// Mods are the episode modifiers of the day.
	Mods episode.Modifiers
}

// State returns the state being mutated.
func (t *Turn) State() *state.GameState {
	return t.engine.state
}

// Source returns the random source.
func (t *Turn) Source() rng.Source {
	return t.engine.rng
}

// Result returns the result under construction.
func (t *Turn) Result() *Result {
	return &t.result
}

// Reject returns the result as a rejection. Only valid before the turn
// has mutated anything.
func (t *Turn) Reject(reason Reason, msg string) Result {
	return t.engine.reject(t.result, reason, msg)
}

func resolveTrain(t *Turn) Result {
	return t.resolveSkilled(false)
}

func resolveTrial(t *Turn) Result {
	return t.resolveSkilled(true)
}

func (t *Turn) resolveSkilled(trial bool) Result {
	e := t.engine
	st := e.state
	def := t.Entry.Def
	r := &t.result

	cost := e.staminaCost(def, t.Before, t.Mods)
	if cost > t.Before.Stamina {
		return t.Reject(ReasonInsufficientStamina,
			fmt.Sprintf("%s needs %d stamina, you have %d.", def.Label, cost, t.Before.Stamina))
	}
	if !st.ConsumeAction() {
		return t.Reject(ReasonNoActions, fmt.Sprintf("No %s actions left.", t.Before.Phase))
	}
	if _, err := st.SpendStamina(cost); err != nil {
		e.logger.Error("spend stamina after affordability check", "action", def.Name, "error", err)
	}
	r.StaminaCost = cost

	pivot := st.ConsumePivotBonus()
	r.PivotBonusUsed = pivot
	r.SuccessRate = e.successRate(t.Before, t.Mods, t.opts, pivot)

	success := rng.Chance(e.rng, r.SuccessRate)
	critical := rng.Chance(e.rng, e.cfg.Success.CriticalChance)
	r.Success = success
	r.Critical = success && critical

	if success {
		tier := def.Base
		if r.Critical {
			tier = def.Critical
		}
		t.applyTier(tier, trial)
	} else {
		t.applyFailure()
	}
	return t.Finish()
}

func (t *Turn) applyTier(tier config.RewardTier, trial bool) {
	e := t.engine
	st := e.state
	r := &t.result

	if len(tier.Exp) > 0 {
		gains, err := st.GrantExp(tier.Exp)
		if err != nil {
			e.logger.Error("grant experience", "action", t.Entry.Def.Name, "error", err)
		}
		r.Gains = append(r.Gains, gains...)
	}
	if tier.Mood != 0 {
		r.MoodDelta += t.adjust(state.FieldMood, tier.Mood)
	}
	if tier.Debt != 0 {
		r.DebtDelta += t.adjust(state.FieldTechnicalDebt, tier.Debt)
	}
	if !trial {
		return
	}

	// Weighted in configured skill order so the float sum is reproducible.
	sum := float64(tier.Progress)
	for _, id := range e.cfg.Skills.IDs {
		if w, ok := t.Entry.Def.SkillWeights[id]; ok {
			sum += float64(st.Level(id)) * w
		}
	}
	progress := int(math.Floor(sum*st.ConditionLevel().DishMultiplier + 1e-9))
	gained, err := st.AddDishProgress(progress)
	if err != nil {
		e.logger.Error("add dish progress", "action", t.Entry.Def.Name, "error", err)
	}
	r.ProgressGained = gained
}

func (t *Turn) applyFailure() {
	e := t.engine
	r := &t.result

	if amount := e.cfg.Success.FailureExp; amount > 0 && len(t.Entry.Def.Base.Exp) > 0 {
		grants := make(map[string]int, len(t.Entry.Def.Base.Exp))
		for id := range t.Entry.Def.Base.Exp {
			grants[id] = amount
		}
		gains, err := e.state.GrantExp(grants)
		if err != nil {
			e.logger.Error("grant consolation experience", "action", t.Entry.Def.Name, "error", err)
		}
		r.Gains = append(r.Gains, gains...)
	}
	r.DebtDelta += t.adjust(state.FieldTechnicalDebt, e.cfg.Debt.FailurePenalty)
}

func resolveRest(t *Turn) Result {
	e := t.engine
	st := e.state
	def := t.Entry.Def
	r := &t.result

	if !st.ConsumeAction() {
		return t.Reject(ReasonNoActions, fmt.Sprintf("No %s actions left.", t.Before.Phase))
	}
	recovered, err := st.RecoverStamina(def.Recovery)
	if err != nil {
		e.logger.Error("recover stamina", "action", def.Name, "error", err)
	}
	r.Success = true
	r.SuccessRate = 1
	r.StaminaRecovered = recovered

	if rng.Chance(e.rng, def.ImproveChance) {
		st.TryImproveCondition()
	}
	// Only the day pool has actions left to spend the bonus on.
	if t.Before.Phase == state.PhaseDay {
		st.SetRestBonus(true)
	}
	return t.Finish()
}

// adjust applies delta to a meter and returns the change actually applied.
func (t *Turn) adjust(f state.Field, delta int) int {
	st := t.engine.state
	before := st.Snapshot()
	after, err := st.Adjust(f, float64(delta))
	if err != nil {
		return 0
	}
	switch f {
	case state.FieldMood:
		return after - before.Mood
	case state.FieldTechnicalDebt:
		return after - before.TechnicalDebt
	}
	return 0
}

// Finish records the action, applies the monotony rule and publishes the
// result. Handlers call it once, after all state changes.
func (t *Turn) Finish() Result {
	e := t.engine
	st := e.state
	def := t.Entry.Def
	r := &t.result

	st.RecordAction(def.Name)
	m := e.cfg.Monotony
	if def.Kind != config.KindRest && m.Streak > 0 && m.MoodPenalty > 0 && st.Streak(def.Name) >= m.Streak {
		r.MoodDelta += t.adjust(state.FieldMood, -m.MoodPenalty)
		r.Monotony = true
	}

	for _, g := range r.Gains {
		r.ExpGained += g.Exp
		r.LevelUps += g.LevelsGained
	}
	after := st.Snapshot()
	r.ConditionAfter = after.Condition
	r.Remaining = after.Remaining()
	r.Message = message(r)

	e.logger.Debug("action executed",
		"action", def.Name,
		"day", r.Day,
		"phase", string(r.Phase),
		"success", r.Success,
		"critical", r.Critical,
		"rate", r.SuccessRate,
	)
	if e.bus != nil {
		e.bus.Emit(eventbus.TopicActionExecuted, *r)
		if r.Critical {
			e.bus.Emit(eventbus.TopicCriticalSuccess, *r)
		}
	}
	return *r
}

func message(r *Result) string {
	label := r.Label
	if label == "" {
		label = r.Action
	}
	switch {
	case r.Kind == config.KindRest:
		return fmt.Sprintf("%s: recovered %d stamina.", label, r.StaminaRecovered)
	case r.Critical:
		return fmt.Sprintf("%s: critical success!", label)
	case r.Success:
		return fmt.Sprintf("%s: success.", label)
	}
	return fmt.Sprintf("%s: failed.", label)
}
