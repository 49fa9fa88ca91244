package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/episode"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/rng"
	"github.com/roach88/sprintchef/internal/state"
)

// Engine resolves actions against one GameState.
//
// Thread-safety: Engine shares the single-goroutine model of GameState.
type Engine struct {
	state    *state.GameState
	bus      *eventbus.Bus
	rng      rng.Source
	cfg      *config.Config
	registry *Registry
	episodes episode.Provider
	handlers map[string]Handler
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithEpisodes sets the provider of per-day modifiers.
// Default: the episode schedule of the state's configuration.
// Passing nil disables episode modifiers.
func WithEpisodes(p episode.Provider) EngineOption {
	return func(e *Engine) {
		e.episodes = p
	}
}

// WithHandler registers h for actions of the given kind, replacing the
// built-in handler if there is one.
func WithHandler(kind string, h Handler) EngineOption {
	return func(e *Engine) {
		e.handlers[kind] = h
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine over gs. Every roll draws from src, which should
// be the same source the state uses so one seed determines a whole run.
//
// Actions are registered from the state's configuration in declaration
// order. Returns a *RegistryError for duplicate names or kinds without a
// handler.
func New(gs *state.GameState, src rng.Source, opts ...EngineOption) (*Engine, error) {
	cfg := gs.Config()
	e := &Engine{
		state:    gs,
		bus:      gs.Bus(),
		rng:      src,
		cfg:      cfg,
		registry: NewRegistry(),
		episodes: episode.NewSchedule(cfg.Episodes),
		handlers: make(map[string]Handler),
		logger:   slog.Default(),
	}
	for _, kind := range []string{config.KindTrain, config.KindTrial, config.KindRest} {
		h, _ := HandlerForKind(kind)
		e.handlers[kind] = h
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.episodes == nil {
		e.episodes = neutralProvider{}
	}

	for _, def := range cfg.Actions {
		h, ok := e.handlers[def.Kind]
		if !ok {
			return nil, &RegistryError{Code: ErrCodeUnknownKind, Action: def.Name, Phase: def.Phase,
				Message: fmt.Sprintf("no handler for kind %q", def.Kind)}
		}
		if err := e.registry.Register(def, h); err != nil {
			return nil, err
		}
	}
	return e, nil
}

type neutralProvider struct{}

func (neutralProvider) Modifiers(int) episode.Modifiers { return episode.Neutral() }

// Registry returns the action registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// State returns the state the engine mutates.
func (e *Engine) State() *state.GameState {
	return e.state
}

// Option adjusts a single ExecuteAction call.
type Option func(*callOptions)

type callOptions struct {
	successBonus float64
}

// WithSuccessBonus adds delta to the success rate before clamping.
func WithSuccessBonus(delta float64) Option {
	return func(o *callOptions) {
		o.successBonus += delta
	}
}

// ExecuteAction resolves the action referenced by ref (name or 1-based
// menu index) in the active phase.
func (e *Engine) ExecuteAction(ref string, opts ...Option) Result {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	snap := e.state.Snapshot()
	res := Result{
		Action:          ref,
		Phase:           snap.Phase,
		Day:             snap.Day,
		ConditionBefore: snap.Condition,
		ConditionAfter:  snap.Condition,
		Remaining:       snap.Remaining(),
	}

	if over, reason := e.state.IsGameOver(); over {
		return e.reject(res, ReasonGameOver, fmt.Sprintf("The run is over (%s).", reason))
	}
	if e.state.IsVictory() {
		return e.reject(res, ReasonGameOver, "The run is over (the dish is ready).")
	}
	if snap.Remaining() <= 0 {
		return e.reject(res, ReasonNoActions, fmt.Sprintf("No %s actions left.", snap.Phase))
	}
	entry, ok := e.registry.Resolve(snap.Phase, ref)
	if !ok {
		return e.reject(res, ReasonUnknownAction, fmt.Sprintf("Unknown %s action %q.", snap.Phase, ref))
	}

	mods := e.episodes.Modifiers(snap.Day)
	res.Action = entry.Def.Name
	res.Label = entry.Def.Label
	res.Kind = entry.Def.Kind
	res.Episode = mods.ID

	t := &Turn{
		engine: e,
		Entry:  entry,
		Before: snap,
		Mods:   mods,
		opts:   o,
		result: res,
	}
	return entry.Handler(t)
}

func (e *Engine) reject(res Result, reason Reason, msg string) Result {
	res.Success = false
	res.Reason = reason
	res.Message = msg
	e.logger.Debug("action rejected",
		"action", res.Action,
		"reason", string(reason),
		"day", res.Day,
		"phase", string(res.Phase),
	)
	return res
}

// staminaCost returns the cost of def under the current policy and episode.
func (e *Engine) staminaCost(def config.ActionDef, snap state.Snapshot, mods episode.Modifiers) int {
	if def.Kind == config.KindRest || def.StaminaCost <= 0 {
		return 0
	}
	mult := mods.StaminaCostMultiplier
	if pol, ok := e.cfg.Policies[string(snap.Policy)]; ok && pol.StaminaCostMultiplier > 0 {
		mult *= pol.StaminaCostMultiplier
	}
	return int(math.Round(float64(def.StaminaCost) * mult))
}

// successRate combines every success-rate term and clamps the sum to the
// configured [minimum, maximum].
func (e *Engine) successRate(snap state.Snapshot, mods episode.Modifiers, o callOptions, pivot bool) float64 {
	f := e.cfg.Success
	rate := f.Base

	if lvl, ok := e.cfg.Conditions.Levels[string(snap.Condition)]; ok {
		rate += lvl.SuccessBonus
	}

	switch st := e.cfg.Stamina; {
	case snap.Stamina >= st.HighThreshold:
		rate += st.HighBonus
	case snap.Stamina <= st.LowThreshold:
		rate -= st.LowPenalty
	}

	switch d := e.cfg.Debt; {
	case snap.TechnicalDebt <= d.LowThreshold:
		rate += d.LowBonus
	case snap.TechnicalDebt >= d.HighThreshold:
		rate -= d.HighPenalty
	}

	if snap.Mood < e.cfg.Mood.PenaltyThreshold {
		rate -= e.cfg.Mood.Penalty
	}

	if pol, ok := e.cfg.Policies[string(snap.Policy)]; ok {
		rate += pol.SuccessRate
	}

	rate += mods.SuccessRate
	if mods.Crisis {
		rate -= f.CrisisPenalty
	}
	if pivot {
		rate += f.PivotBonus
	}
	rate += o.successBonus

	return math.Max(f.Minimum, math.Min(f.Maximum, rate))
}

// Available lists the actions of the active phase with their current cost
// and success rate.
func (e *Engine) Available() []Choice {
	snap := e.state.Snapshot()
	mods := e.episodes.Modifiers(snap.Day)
	var out []Choice
	for _, entry := range e.registry.Actions(snap.Phase) {
		out = append(out, e.choice(entry, snap, mods))
	}
	return out
}

// Preview describes the action ref would resolve to, without executing it.
func (e *Engine) Preview(ref string) (Choice, bool) {
	snap := e.state.Snapshot()
	entry, ok := e.registry.Resolve(snap.Phase, ref)
	if !ok {
		return Choice{}, false
	}
	return e.choice(entry, snap, e.episodes.Modifiers(snap.Day)), true
}

func (e *Engine) choice(entry *Entry, snap state.Snapshot, mods episode.Modifiers) Choice {
	cost := e.staminaCost(entry.Def, snap, mods)
	rate := 1.0
	if entry.Def.Kind != config.KindRest {
		rate = e.successRate(snap, mods, callOptions{}, snap.PivotBonus)
	}
	return Choice{
		Index:       entry.Index,
		Name:        entry.Def.Name,
		Label:       entry.Def.Label,
		Kind:        entry.Def.Kind,
		StaminaCost: cost,
		SuccessRate: rate,
		Affordable:  cost <= snap.Stamina,
	}
}
