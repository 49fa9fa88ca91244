package engine

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/state"
)

// Handler resolves one action. It runs after the shared rejection checks
// (game over, empty pool, unknown action) and owns everything from the
// stamina check onward.
type Handler func(t *Turn) Result

// Entry is one registered action.
type Entry struct {
	// Index is the 1-based position of the action in its phase menu.
	Index   int
	Def     config.ActionDef
	Handler Handler
}

type registryKey struct {
	phase state.Phase
	name  string
}

// Registry maps (phase, action name) to handlers.
//
// Names are matched case-insensitively after Unicode NFC normalisation, so
// "Prep", "PREP" and " prep " resolve to the same action. A decimal
// reference selects by menu position instead.
type Registry struct {
	byKey   map[registryKey]*Entry
	byPhase map[state.Phase][]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:   make(map[registryKey]*Entry),
		byPhase: make(map[state.Phase][]*Entry),
	}
}

// FoldName normalises an action reference for lookup.
func FoldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Register adds def with handler h. Actions are numbered in registration
// order within their phase.
func (r *Registry) Register(def config.ActionDef, h Handler) error {
	phase := state.Phase(def.Phase)
	if !phase.Valid() {
		return &RegistryError{Code: ErrCodeInvalidPhase, Action: def.Name, Phase: def.Phase, Message: "unknown phase"}
	}
	name := FoldName(def.Name)
	if name == "" {
		return &RegistryError{Code: ErrCodeEmptyName, Phase: def.Phase, Message: "action name is empty"}
	}
	key := registryKey{phase: phase, name: name}
	if _, exists := r.byKey[key]; exists {
		return &RegistryError{Code: ErrCodeDuplicateAction, Action: def.Name, Phase: def.Phase, Message: "action already registered"}
	}

	e := &Entry{
		Index:   len(r.byPhase[phase]) + 1,
		Def:     def,
		Handler: h,
	}
	r.byKey[key] = e
	r.byPhase[phase] = append(r.byPhase[phase], e)
	return nil
}

// Resolve finds the action referenced by ref in phase. ref is either an
// action name or a 1-based menu index.
func (r *Registry) Resolve(phase state.Phase, ref string) (*Entry, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		list := r.byPhase[phase]
		if n < 1 || n > len(list) {
			return nil, false
		}
		return list[n-1], true
	}
	e, ok := r.byKey[registryKey{phase: phase, name: FoldName(ref)}]
	return e, ok
}

// Actions returns the entries of phase in menu order.
func (r *Registry) Actions(phase state.Phase) []*Entry {
	return append([]*Entry(nil), r.byPhase[phase]...)
}

// HandlerForKind returns the built-in handler of an action kind.
func HandlerForKind(kind string) (Handler, bool) {
	switch kind {
	case config.KindTrain:
		return resolveTrain, true
	case config.KindTrial:
		return resolveTrial, true
	case config.KindRest:
		return resolveRest, true
	}
	return nil, false
}
