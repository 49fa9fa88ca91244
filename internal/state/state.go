package state

import (
	"log/slog"
	"math"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
)

// GameState is the canonical mutable state of one run.
type GameState struct {
	cfg    config.Config
	bus    *eventbus.Bus
	rng    rng.Source
	logger *slog.Logger
	cur    Snapshot
}

// Option configures a GameState.
type Option func(*GameState)

// WithLogger sets the logger used for rejected input.
func WithLogger(l *slog.Logger) Option {
	return func(s *GameState) {
		s.logger = l
	}
}

// New creates a state initialised from cfg. Events are published on bus and
// every random draw (condition rolls, decay) reads from src.
func New(cfg config.Config, bus *eventbus.Bus, src rng.Source, opts ...Option) *GameState {
	s := &GameState{
		cfg:    cfg,
		bus:    bus,
		rng:    src,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cur = s.initial()
	return s
}

func (s *GameState) initial() Snapshot {
	cond := Condition(s.cfg.Conditions.Initial)
	if !cond.Valid() {
		cond = ConditionNormal
	}
	snap := Snapshot{
		Day:   1,
		Phase: PhaseDay,
		ActionsRemaining: map[Phase]int{
			PhaseDay:   s.cfg.Phases.DayActions,
			PhaseNight: s.cfg.Phases.NightActions,
		},
		Condition:     cond,
		Skills:        make(map[string]int, len(s.cfg.Skills.IDs)),
		Experience:    make(map[string]int, len(s.cfg.Skills.IDs)),
		Stamina:       clampInt(s.cfg.Stamina.Initial, 0, s.cfg.Stamina.Max),
		TechnicalDebt: clampInt(s.cfg.Debt.Initial, 0, s.cfg.Debt.Max),
		Mood:          clampInt(s.cfg.Mood.Initial, 0, s.cfg.Mood.Max),
		TodayActions:  []string{},
		ActionHistory: []string{},
	}
	for _, id := range s.cfg.Skills.IDs {
		snap.Skills[id] = 0
		snap.Experience[id] = 0
	}
	return snap
}

// Config returns the configuration the state was built with.
func (s *GameState) Config() *config.Config {
	return &s.cfg
}

// Bus returns the bus the state publishes on.
func (s *GameState) Bus() *eventbus.Bus {
	return s.bus
}

// Snapshot returns a deep copy of the current state.
func (s *GameState) Snapshot() Snapshot {
	return s.cur.Clone()
}

// Update merges p into the state and publishes state-changed.
//
// Every key is validated before anything is applied: an invalid enum value
// or unknown skill rejects the whole patch. Bounded numeric keys are clamped
// to their declared ranges rather than rejected. An empty patch is a no-op.
func (s *GameState) Update(p Patch) (Snapshot, error) {
	changes := p.fields()
	if len(changes) == 0 {
		return s.Snapshot(), nil
	}
	if err := s.validate(p); err != nil {
		return s.Snapshot(), s.reject("update", err)
	}

	old := s.cur.Clone()
	next := s.cur.Clone()
	s.apply(&next, p)
	s.cur = next

	if s.bus != nil {
		s.bus.Emit(eventbus.TopicStateChanged, StateChanged{
			Old:     old,
			New:     next.Clone(),
			Changes: changes,
		})
	}
	return s.Snapshot(), nil
}

func (s *GameState) validate(p Patch) error {
	if p.Phase != nil && !p.Phase.Valid() {
		return newError(ErrKindInvalidValue, FieldPhase, "unknown phase %q", *p.Phase)
	}
	if p.Condition != nil && !p.Condition.Valid() {
		return newError(ErrKindInvalidValue, FieldCondition, "unknown condition %q", *p.Condition)
	}
	if p.Policy != nil && !p.Policy.Valid() {
		return newError(ErrKindInvalidValue, FieldPolicy, "unknown policy %q", *p.Policy)
	}
	for id := range p.Skills {
		if !s.cfg.HasSkill(id) {
			return newError(ErrKindUnknownSkill, FieldSkills, "unknown skill %q", id)
		}
	}
	for id := range p.Experience {
		if !s.cfg.HasSkill(id) {
			return newError(ErrKindUnknownSkill, FieldExperience, "unknown skill %q", id)
		}
	}
	return nil
}

func (s *GameState) apply(next *Snapshot, p Patch) {
	if p.Day != nil {
		next.Day = max(*p.Day, 1)
	}
	if p.Phase != nil {
		next.Phase = *p.Phase
	}
	if p.DayActions != nil {
		next.ActionsRemaining[PhaseDay] = clampInt(*p.DayActions, 0, s.cfg.Phases.DayActions)
	}
	if p.NightActions != nil {
		next.ActionsRemaining[PhaseNight] = clampInt(*p.NightActions, 0, s.cfg.Phases.NightActions)
	}
	if p.Condition != nil {
		next.Condition = *p.Condition
	}
	for id, lvl := range p.Skills {
		next.Skills[id] = clampInt(lvl, 0, s.cfg.Skills.MaxLevel)
	}
	for id, exp := range p.Experience {
		next.Experience[id] = clampInt(exp, 0, s.cfg.Skills.ExpPerLevel-1)
	}
	if p.Stamina != nil {
		next.Stamina = clampInt(*p.Stamina, 0, s.cfg.Stamina.Max)
	}
	if p.TechnicalDebt != nil {
		next.TechnicalDebt = clampInt(*p.TechnicalDebt, 0, s.cfg.Debt.Max)
	}
	if p.DishProgress != nil {
		next.DishProgress = clampInt(*p.DishProgress, 0, MaxDishProgress)
	}
	if p.Mood != nil {
		next.Mood = clampInt(*p.Mood, 0, s.cfg.Mood.Max)
	}
	if p.Policy != nil {
		next.Policy = *p.Policy
	}
	if p.HasRestBonus != nil {
		next.HasRestBonus = *p.HasRestBonus
	}
	if p.PivotBonus != nil {
		next.PivotBonus = *p.PivotBonus
	}
	if p.TodayActions != nil {
		next.TodayActions = s.bounded(p.TodayActions)
	}
	if p.ActionHistory != nil {
		next.ActionHistory = s.bounded(p.ActionHistory)
	}
}

// bounded keeps the most recent History.Limit entries.
func (s *GameState) bounded(seq []string) []string {
	limit := s.cfg.History.Limit
	if limit > 0 && len(seq) > limit {
		seq = seq[len(seq)-limit:]
	}
	return append(make([]string, 0, len(seq)), seq...)
}

// numericRange returns the declared range of an adjustable meter.
func (s *GameState) numericRange(f Field) (lo, hi int, ok bool) {
	switch f {
	case FieldStamina:
		return 0, s.cfg.Stamina.Max, true
	case FieldTechnicalDebt:
		return 0, s.cfg.Debt.Max, true
	case FieldDishProgress:
		return 0, MaxDishProgress, true
	case FieldMood:
		return 0, s.cfg.Mood.Max, true
	}
	return 0, 0, false
}

func (s *GameState) numericValue(f Field) int {
	switch f {
	case FieldStamina:
		return s.cur.Stamina
	case FieldTechnicalDebt:
		return s.cur.TechnicalDebt
	case FieldDishProgress:
		return s.cur.DishProgress
	case FieldMood:
		return s.cur.Mood
	}
	return 0
}

func numericPatch(f Field, v int) Patch {
	switch f {
	case FieldStamina:
		return Patch{Stamina: &v}
	case FieldTechnicalDebt:
		return Patch{TechnicalDebt: &v}
	case FieldDishProgress:
		return Patch{DishProgress: &v}
	case FieldMood:
		return Patch{Mood: &v}
	}
	return Patch{}
}

// Adjust adds delta to a numeric meter, clamped to the meter's declared
// range, and returns the new value.
func (s *GameState) Adjust(f Field, delta float64) (int, error) {
	lo, hi, ok := s.numericRange(f)
	if !ok {
		return 0, s.reject("adjust", newError(ErrKindNotNumeric, f, "field is not a numeric meter"))
	}
	return s.AdjustWithin(f, delta, float64(lo), float64(hi))
}

// AdjustWithin adds delta to a numeric meter and clamps the result to
// [min, max] intersected with the meter's declared range.
//
// On invalid input (non-numeric field, NaN or infinite delta, min > max)
// the state is untouched and the current value is returned with an *Error.
func (s *GameState) AdjustWithin(f Field, delta, min, max float64) (int, error) {
	lo, hi, ok := s.numericRange(f)
	if !ok {
		return 0, s.reject("adjust", newError(ErrKindNotNumeric, f, "field is not a numeric meter"))
	}
	cur := s.numericValue(f)
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return cur, s.reject("adjust", newError(ErrKindInvalidDelta, f, "delta must be finite, got %v", delta))
	}
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return cur, s.reject("adjust", newError(ErrKindInvalidBounds, f, "invalid bounds [%v, %v]", min, max))
	}

	// Meters hold integers, so the caller's bounds shrink to the integers
	// inside them before meeting the meter's declared range.
	floor := math.Max(math.Ceil(min), float64(lo))
	ceil := math.Min(math.Floor(max), float64(hi))
	if floor > ceil {
		return cur, s.reject("adjust", newError(ErrKindInvalidBounds, f,
			"bounds [%v, %v] hold no value in [%d, %d]", min, max, lo, hi))
	}

	next := math.Round(float64(cur) + delta)
	v := int(math.Max(floor, math.Min(ceil, next)))
	if v == cur {
		return cur, nil
	}
	if _, err := s.Update(numericPatch(f, v)); err != nil {
		return cur, err
	}
	return s.numericValue(f), nil
}

// reject logs a rejected operation and returns err unchanged.
func (s *GameState) reject(op string, err error) error {
	s.logger.Warn("state operation rejected",
		"op", op,
		"error", err,
		"day", s.cur.Day,
	)
	return err
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
