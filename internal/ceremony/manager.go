package ceremony

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/engine"
	"github.com/roach88/sprintchef/internal/episode"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
	"github.com/roach88/sprintchef/internal/state"
)

// Clock supplies wall time for the presentation delay.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type task struct {
	name string
	due  time.Time
	run  func()
}

// Manager runs the day ceremony of one GameState.
//
// Thread-safety: Manager is not safe for concurrent use. It shares the
// caller's goroutine with the state and engine it observes.
type Manager struct {
	state    *state.GameState
	bus      *eventbus.Bus
	rng      rng.Source
	cfg      *config.Config
	clock    Clock
	episodes *episode.Schedule
	logger   *slog.Logger

	stage    Stage
	dayStart state.Snapshot
	taken    int
	failures map[string]int
	pivoted  bool
	offer    *PivotOffer
	retro    *Retrospective
	pending  []task
	sub      eventbus.Subscription
	ended    bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for deferred tasks.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a manager in the idle stage and subscribes it to
// action-executed. Random events draw from src.
func New(gs *state.GameState, src rng.Source, opts ...Option) *Manager {
	m := &Manager{
		state:    gs,
		bus:      gs.Bus(),
		rng:      src,
		cfg:      gs.Config(),
		clock:    realClock{},
		episodes: episode.NewSchedule(gs.Config().Episodes),
		logger:   slog.Default(),
		stage:    StageIdle,
		failures: make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sub = m.bus.On(eventbus.TopicActionExecuted, m.onActionExecuted)
	return m
}

// Close detaches the manager from the bus.
func (m *Manager) Close() {
	m.sub.Unsubscribe()
}

// Stage returns the current stage.
func (m *Manager) Stage() Stage {
	return m.stage
}

// PendingPivot returns the open pivot offer, if any.
func (m *Manager) PendingPivot() (PivotOffer, bool) {
	if m.offer == nil {
		return PivotOffer{}, false
	}
	return *m.offer, true
}

// Retrospective returns the last retrospective, if a night has been reached.
func (m *Manager) Retrospective() (Retrospective, bool) {
	if m.retro == nil {
		return Retrospective{}, false
	}
	return *m.retro, true
}

func (m *Manager) setStage(to Stage) {
	from := m.stage
	if from == to {
		return
	}
	m.stage = to
	m.logger.Debug("ceremony stage", "from", string(from), "to", string(to), "day", m.state.Day())
	m.bus.Emit(eventbus.TopicCeremonyChanged, StageChanged{From: from, To: to, Day: m.state.Day()})
}

func (m *Manager) wrongStage(op string) error {
	if m.stage == StageEnded {
		return &Error{Code: ErrCodeEnded, Stage: m.stage, Message: "the run has ended"}
	}
	return &Error{Code: ErrCodeWrongStage, Stage: m.stage, Message: op + " is not available now"}
}

// StartNewDay enters the morning of the state's current day and returns the
// focus options. Valid from idle, or from night once the day has been
// advanced externally.
//
// The morning may roll a random event (random_events.chance, then a
// weighted pick) and announces an episode that starts today.
func (m *Manager) StartNewDay() ([]FocusOption, error) {
	switch {
	case m.stage == StageIdle:
	case m.stage == StageNight && m.state.Day() > m.dayStart.Day:
	default:
		return nil, m.wrongStage("start new day")
	}
	return m.startDay(), nil
}

func (m *Manager) startDay() []FocusOption {
	m.taken = 0
	m.failures = make(map[string]int)
	m.pivoted = false
	m.offer = nil
	m.retro = nil
	m.pending = nil
	m.dayStart = m.state.Snapshot()
	m.setStage(StageMorning)

	day := m.state.Day()
	if started, ok := m.episodes.StartsOn(day); ok {
		m.bus.Emit(eventbus.TopicEpisodeStarted, started)
	}
	m.rollRandomEvent(day)
	if m.checkTerminal() {
		return nil
	}
	return m.FocusOptions()
}

func (m *Manager) rollRandomEvent(day int) {
	re := m.cfg.RandomEvents
	if len(re.Table) == 0 || !rng.Chance(m.rng, re.Chance) {
		return
	}
	table := make([]rng.Weighted, 0, len(re.Table))
	for _, ev := range re.Table {
		table = append(table, rng.Weighted{Key: ev.ID, Weight: ev.Weight})
	}
	id, ok := rng.Pick(m.rng, table)
	if !ok {
		return
	}
	for _, ev := range re.Table {
		if ev.ID != id {
			continue
		}
		payload := RandomEvent{Day: day, ID: ev.ID, Message: ev.Message}
		payload.Stamina = m.adjust(state.FieldStamina, ev.Stamina)
		payload.Mood = m.adjust(state.FieldMood, ev.Mood)
		payload.Debt = m.adjust(state.FieldTechnicalDebt, ev.Debt)
		m.bus.Emit(eventbus.TopicRandomEvent, payload)
		return
	}
}

func (m *Manager) adjust(f state.Field, delta int) int {
	if delta == 0 {
		return 0
	}
	before := m.state.Snapshot()
	after, err := m.state.Adjust(f, float64(delta))
	if err != nil {
		return 0
	}
	switch f {
	case state.FieldStamina:
		return after - before.Stamina
	case state.FieldMood:
		return after - before.Mood
	case state.FieldTechnicalDebt:
		return after - before.TechnicalDebt
	}
	return 0
}

// FocusOptions lists the configured daily focus options in a fixed order.
func (m *Manager) FocusOptions() []FocusOption {
	var out []FocusOption
	for _, p := range []state.Policy{state.PolicyQuality, state.PolicySpeed, state.PolicyChallenge} {
		pol, ok := m.cfg.Policies[string(p)]
		if !ok {
			continue
		}
		out = append(out, FocusOption{
			Policy:                p,
			Label:                 pol.Label,
			ExpMultiplier:         pol.ExpMultiplier,
			SuccessRate:           pol.SuccessRate,
			StaminaCostMultiplier: pol.StaminaCostMultiplier,
		})
	}
	return out
}

// SelectDailyFocus applies the chosen focus and opens the action stage.
// PolicyNone skips the focus for the day.
func (m *Manager) SelectDailyFocus(p state.Policy) error {
	if m.stage != StageMorning {
		return m.wrongStage("select daily focus")
	}
	if p != state.PolicyNone {
		if _, ok := m.cfg.Policies[string(p)]; !ok {
			return &Error{Code: ErrCodeUnknownPolicy, Stage: m.stage, Message: fmt.Sprintf("unknown focus %q", p)}
		}
	}
	if err := m.state.SetPolicy(p); err != nil {
		return fmt.Errorf("set policy: %w", err)
	}
	m.setStage(StageAction)
	return nil
}

func (m *Manager) onActionExecuted(ev eventbus.Event) {
	res, ok := ev.Payload.(engine.Result)
	if !ok || m.stage == StageEnded || m.stage == StageIdle {
		return
	}
	if m.stage == StageMorning && res.Phase == state.PhaseDay {
		// Acting before choosing a focus means no focus today.
		m.setStage(StageAction)
	}

	if res.Phase == state.PhaseDay {
		m.taken++
	}
	if !res.Success {
		m.failures[res.Action]++
		m.maybeOfferPivot(res.Action)
	}

	if m.checkTerminal() {
		return
	}
	if res.Phase == state.PhaseDay && m.state.Phase() == state.PhaseDay && m.state.Remaining() == 0 {
		m.schedule("night", m.presentationDelay(), m.enterNight)
	}
}

func (m *Manager) maybeOfferPivot(action string) {
	threshold := m.cfg.Pivot.FailureThreshold
	if threshold <= 0 || m.pivoted || m.offer != nil || m.failures[action] < threshold {
		return
	}
	m.offer = &PivotOffer{
		Day:           m.state.Day(),
		Action:        action,
		Failures:      m.failures[action],
		ProgressCost:  m.cfg.Pivot.ProgressCost,
		DebtReduction: m.cfg.Pivot.DebtReduction,
	}
	m.bus.Emit(eventbus.TopicPivotOffered, *m.offer)
}

// AcceptPivot trades progress for debt reduction and arms the pivot bonus
// for the next action.
func (m *Manager) AcceptPivot() error {
	if m.offer == nil {
		return &Error{Code: ErrCodeNoPivot, Stage: m.stage, Message: "no pivot on offer"}
	}
	offer := *m.offer
	m.offer = nil
	m.pivoted = true

	progress, err := m.state.AddDishProgress(-offer.ProgressCost)
	if err != nil {
		return fmt.Errorf("pivot progress: %w", err)
	}
	debt := m.adjust(state.FieldTechnicalDebt, -offer.DebtReduction)
	m.state.SetPivotBonus(true)

	m.bus.Emit(eventbus.TopicPivotResolved, PivotResolution{
		Day:           offer.Day,
		Action:        offer.Action,
		Accepted:      true,
		ProgressDelta: progress,
		DebtDelta:     debt,
	})
	m.checkTerminal()
	return nil
}

// DeclinePivot dismisses the offer. State is untouched.
func (m *Manager) DeclinePivot() error {
	if m.offer == nil {
		return &Error{Code: ErrCodeNoPivot, Stage: m.stage, Message: "no pivot on offer"}
	}
	offer := *m.offer
	m.offer = nil
	m.pivoted = true
	m.bus.Emit(eventbus.TopicPivotResolved, PivotResolution{Day: offer.Day, Action: offer.Action})
	return nil
}

// EnterNight switches to night without waiting for the presentation delay.
// The day's action pool must be exhausted.
func (m *Manager) EnterNight() error {
	if m.stage != StageMorning && m.stage != StageAction {
		return m.wrongStage("enter night")
	}
	if m.state.Phase() == state.PhaseDay && m.state.Remaining() > 0 {
		return &Error{Code: ErrCodeDayNotDone, Stage: m.stage,
			Message: fmt.Sprintf("%d day actions left", m.state.Remaining())}
	}
	m.cancel("night")
	m.enterNight()
	return nil
}

func (m *Manager) enterNight() {
	if m.stage == StageEnded || m.stage == StageNight {
		return
	}
	m.state.TransitionToNight()
	m.setStage(StageNight)

	end := m.state.Snapshot()
	retro := Retrospective{
		Day:             end.Day,
		Actions:         append([]string{}, end.TodayActions...),
		StaminaDelta:    end.Stamina - m.dayStart.Stamina,
		DebtDelta:       end.TechnicalDebt - m.dayStart.TechnicalDebt,
		MoodDelta:       end.Mood - m.dayStart.Mood,
		ProgressDelta:   end.DishProgress - m.dayStart.DishProgress,
		ConditionBefore: m.dayStart.Condition,
		ConditionAfter:  end.Condition,
	}
	if len(m.failures) > 0 {
		retro.Failures = make(map[string]int, len(m.failures))
		for k, v := range m.failures {
			retro.Failures[k] = v
		}
	}
	for _, id := range m.cfg.Skills.IDs {
		if gained := end.Skills[id] - m.dayStart.Skills[id]; gained > 0 {
			if retro.LevelsGained == nil {
				retro.LevelsGained = make(map[string]int)
			}
			retro.LevelsGained[id] = gained
		}
	}
	m.retro = &retro
	m.bus.Emit(eventbus.TopicRetrospective, retro)
}

// ProceedToNextDay advances the day and opens its morning. The night action
// must have been taken. An open pivot offer is declined.
//
// This is the only call through which the manager advances the day.
func (m *Manager) ProceedToNextDay() ([]FocusOption, error) {
	if m.stage != StageNight {
		return nil, m.wrongStage("proceed to next day")
	}
	if m.state.Phase() != state.PhaseNight || m.state.Remaining() > 0 {
		return nil, &Error{Code: ErrCodeNightNotDone, Stage: m.stage, Message: "the night action has not been taken"}
	}
	if m.offer != nil {
		_ = m.DeclinePivot()
	}

	m.state.AdvanceDay()
	if m.checkTerminal() {
		return nil, nil
	}
	return m.startDay(), nil
}

// checkTerminal polls the state predicates and ends the run when one holds.
// Victory is checked first.
func (m *Manager) checkTerminal() bool {
	if m.ended {
		return true
	}
	snap := m.state.Snapshot()
	if m.state.IsVictory() {
		m.end()
		m.bus.Emit(eventbus.TopicVictory, Victory{Day: snap.Day, DishProgress: snap.DishProgress})
		return true
	}
	if over, reason := m.state.IsGameOver(); over {
		m.end()
		m.bus.Emit(eventbus.TopicGameOver, GameOver{Day: snap.Day, Reason: reason})
		return true
	}
	return false
}

func (m *Manager) end() {
	m.ended = true
	m.pending = nil
	m.offer = nil
	m.setStage(StageEnded)
	m.logger.Info("run ended", "day", m.state.Day())
}

// Outcome reports whether the run ended and how.
func (m *Manager) Outcome() (ended, victory bool, reason state.GameOverReason) {
	if !m.ended {
		return false, false, state.GameOverNone
	}
	if m.state.IsVictory() {
		return true, true, state.GameOverNone
	}
	_, reason = m.state.IsGameOver()
	return true, false, reason
}

func (m *Manager) presentationDelay() time.Duration {
	return time.Duration(m.cfg.Ceremony.PresentationDelayMS) * time.Millisecond
}

func (m *Manager) schedule(name string, delay time.Duration, fn func()) {
	for _, t := range m.pending {
		if t.name == name {
			return
		}
	}
	m.pending = append(m.pending, task{name: name, due: m.clock.Now().Add(delay), run: fn})
}

func (m *Manager) cancel(name string) {
	kept := m.pending[:0]
	for _, t := range m.pending {
		if t.name != name {
			kept = append(kept, t)
		}
	}
	m.pending = kept
}

// NextDue returns when the earliest deferred task becomes due.
func (m *Manager) NextDue() (time.Time, bool) {
	if len(m.pending) == 0 {
		return time.Time{}, false
	}
	next := m.pending[0].due
	for _, t := range m.pending[1:] {
		if t.due.Before(next) {
			next = t.due
		}
	}
	return next, true
}

// RunPending runs every deferred task that is due, earliest first, and
// returns how many ran.
func (m *Manager) RunPending() int {
	now := m.clock.Now()
	var due, later []task
	for _, t := range m.pending {
		if t.due.After(now) {
			later = append(later, t)
		} else {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })
	m.pending = later
	for _, t := range due {
		t.run()
	}
	return len(due)
}
