package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/state"
)

func noop(t *Turn) Result { return Result{} }

func TestRegistry_ResolveByNameAndIndex(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(config.ActionDef{Name: "prep", Phase: "day", Kind: "train"}, noop))
	require.NoError(t, r.Register(config.ActionDef{Name: "Caf\u00e9", Phase: "day", Kind: "train"}, noop))
	require.NoError(t, r.Register(config.ActionDef{Name: "prep", Phase: "night", Kind: "train"}, noop))

	e, ok := r.Resolve(state.PhaseDay, "2")
	require.True(t, ok)
	assert.Equal(t, "Caf\u00e9", e.Def.Name)

	// Decomposed input composes to the registered spelling before folding.
	e, ok = r.Resolve(state.PhaseDay, "CAFE\u0301")
	require.True(t, ok)
	assert.Equal(t, 2, e.Index)

	e, ok = r.Resolve(state.PhaseNight, "Prep")
	require.True(t, ok)
	assert.Equal(t, 1, e.Index)
	assert.Equal(t, "night", e.Def.Phase)

	_, ok = r.Resolve(state.PhaseNight, "2")
	assert.False(t, ok)
	_, ok = r.Resolve(state.PhaseDay, "0")
	assert.False(t, ok)
}

func TestRegistry_RejectsBadDefinitions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(config.ActionDef{Name: "prep", Phase: "day"}, noop))

	err := r.Register(config.ActionDef{Name: "Prep", Phase: "day"}, noop)
	assert.True(t, IsDuplicateAction(err))

	err = r.Register(config.ActionDef{Name: "nap", Phase: "dusk"}, noop)
	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidPhase, re.Code)

	err = r.Register(config.ActionDef{Name: "  ", Phase: "day"}, noop)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeEmptyName, re.Code)
}

func TestRegistry_ActionsIsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(config.ActionDef{Name: "prep", Phase: "day"}, noop))

	list := r.Actions(state.PhaseDay)
	list[0] = nil
	assert.NotNil(t, r.Actions(state.PhaseDay)[0])
}

func TestRegistryError_Message(t *testing.T) {
	err := &RegistryError{Code: ErrCodeDuplicateAction, Action: "prep", Phase: "day", Message: "action already registered"}
	assert.Equal(t, "DUPLICATE_ACTION: action already registered (action=prep, phase=day)", err.Error())
}
