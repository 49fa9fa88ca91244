package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
	"github.com/roach88/sprintchef/internal/testutil"
)

type fixture struct {
	engine *Engine
	state  *state.GameState
	bus    *eventbus.Bus
	rolls  *testutil.Rolls
}

func newFixture(t *testing.T, cfg config.Config, rolls ...float64) *fixture {
	t.Helper()
	bus := eventbus.New()
	src := testutil.NewRolls(rolls...)
	gs := state.New(cfg, bus, src)
	e, err := New(gs, src)
	require.NoError(t, err)
	return &fixture{engine: e, state: gs, bus: bus, rolls: src}
}

func (f *fixture) patch(t *testing.T, p state.Patch) {
	t.Helper()
	_, err := f.state.Update(p)
	require.NoError(t, err)
}

func (f *fixture) executed() *[]Result {
	var out []Result
	f.bus.On(eventbus.TopicActionExecuted, func(ev eventbus.Event) {
		out = append(out, ev.Payload.(Result))
	})
	return &out
}

// neutralDay puts the state on a day without episodes and with every
// success-rate term at zero, so the rate equals the configured base.
func (f *fixture) neutralDay(t *testing.T) {
	f.patch(t, state.Patch{
		Day:           state.Ptr(3),
		Stamina:       state.Ptr(50),
		TechnicalDebt: state.Ptr(40),
		Mood:          state.Ptr(50),
	})
}

func TestExecuteAction_SuccessAppliesBaseTier(t *testing.T) {
	f := newFixture(t, config.Default(), 0.0, 0.5)
	events := f.executed()

	res := f.engine.ExecuteAction("prep")

	assert.True(t, res.Success)
	assert.False(t, res.Critical)
	assert.False(t, res.Rejected())
	assert.Equal(t, "prep", res.Action)
	assert.Equal(t, 15, res.StaminaCost)
	assert.InDelta(t, 0.75, res.SuccessRate, 1e-9)
	assert.Equal(t, 40, res.ExpGained)
	assert.Equal(t, 2, res.MoodDelta)
	assert.Equal(t, 2, res.Remaining)

	snap := f.state.Snapshot()
	assert.Equal(t, 85, snap.Stamina)
	assert.Equal(t, 30, snap.Experience["knife"])
	assert.Equal(t, 10, snap.Experience["taste"])
	assert.Equal(t, 72, snap.Mood)
	assert.Equal(t, []string{"prep"}, snap.TodayActions)

	require.Len(t, *events, 1)
	assert.Equal(t, res, (*events)[0])
}

func TestExecuteAction_CriticalAppliesBonusTier(t *testing.T) {
	f := newFixture(t, config.Default(), 0.0, 0.05)
	var crits int
	f.bus.On(eventbus.TopicCriticalSuccess, func(eventbus.Event) { crits++ })

	res := f.engine.ExecuteAction("prep")

	assert.True(t, res.Critical)
	assert.Equal(t, 70, res.ExpGained)
	assert.Equal(t, 5, res.MoodDelta)
	assert.Equal(t, 1, crits)
}

func TestExecuteAction_FailureGrantsConsolation(t *testing.T) {
	f := newFixture(t, config.Default(), 0.99, 0.0)

	res := f.engine.ExecuteAction("prep")

	assert.False(t, res.Success)
	assert.False(t, res.Critical, "critical only counts on success")
	assert.False(t, res.Rejected())
	assert.Equal(t, 10, res.DebtDelta)
	assert.Equal(t, 10, res.ExpGained)

	snap := f.state.Snapshot()
	assert.Equal(t, 5, snap.Experience["knife"])
	assert.Equal(t, 5, snap.Experience["taste"])
	assert.Equal(t, 10, snap.TechnicalDebt)
	assert.Equal(t, 85, snap.Stamina, "stamina is spent on failure too")
	assert.Equal(t, 2, f.rolls.Drawn(), "success and critical are both drawn")
}

func TestExecuteAction_TrialProgress(t *testing.T) {
	f := newFixture(t, config.Default(), 0.0, 0.5)
	f.patch(t, state.Patch{
		Condition: state.Ptr(state.ConditionGood),
		Skills:    map[string]int{"knife": 2, "heat": 1, "plating": 1},
	})
	var progress []state.DishProgress
	f.bus.On(eventbus.TopicDishProgress, func(ev eventbus.Event) {
		progress = append(progress, ev.Payload.(state.DishProgress))
	})

	res := f.engine.ExecuteAction("trial")

	require.True(t, res.Success)
	// floor((10 + 2*1.5 + 1*1.5 + 0*1 + 1*1) * 1.15) = floor(17.825)
	assert.Equal(t, 17, res.ProgressGained)
	assert.Equal(t, 17, f.state.Snapshot().DishProgress)
	assert.Equal(t, 18, f.state.Snapshot().Experience["plating"], "15 * 1.2 for good condition")
	require.Len(t, progress, 1)
	assert.Equal(t, state.DishProgress{Before: 0, After: 17, Delta: 17}, progress[0])
}

func TestExecuteAction_RestRecoversActualDelta(t *testing.T) {
	f := newFixture(t, config.Default(), 0.9)
	f.patch(t, state.Patch{Stamina: state.Ptr(41)})

	res := f.engine.ExecuteAction("rest")

	assert.True(t, res.Success)
	assert.Equal(t, 59, res.StaminaRecovered)
	assert.Equal(t, 0, res.StaminaCost)
	assert.Equal(t, 100, f.state.Stamina())
	assert.True(t, f.state.Snapshot().HasRestBonus)
	assert.Equal(t, state.ConditionNormal, res.ConditionAfter, "0.9 misses the improve chance")
	assert.Equal(t, 1, f.rolls.Drawn())
}

func TestExecuteAction_RestCanImproveCondition(t *testing.T) {
	f := newFixture(t, config.Default(), 0.1, 0.2)

	res := f.engine.ExecuteAction("rest")

	assert.Equal(t, state.ConditionNormal, res.ConditionBefore)
	assert.Equal(t, state.ConditionGood, res.ConditionAfter)
	assert.Equal(t, state.ConditionGood, f.state.Condition())
}

func TestExecuteAction_RestBonusOnlyFromDayRest(t *testing.T) {
	f := newFixture(t, config.Default(), 0.9)

	res := f.engine.ExecuteAction("rest")
	require.True(t, res.Success)
	assert.True(t, f.state.Snapshot().HasRestBonus)

	f.patch(t, state.Patch{HasRestBonus: state.Ptr(false)})
	f.state.TransitionToNight()
	res = f.engine.ExecuteAction("sleep")
	require.True(t, res.Success)
	assert.False(t, f.state.Snapshot().HasRestBonus)
}

func TestExecuteAction_RestWithNoStamina(t *testing.T) {
	f := newFixture(t, config.Default(), 0.9)
	f.patch(t, state.Patch{Stamina: state.Ptr(0)})

	res := f.engine.ExecuteAction("rest")
	assert.True(t, res.Success, "rest is free")
	assert.Equal(t, 60, res.StaminaRecovered)
}

func TestExecuteAction_RejectionsDoNotMutate(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, f *fixture)
		ref    string
		reason Reason
	}{
		{
			name:   "unknown action",
			ref:    "juggle",
			reason: ReasonUnknownAction,
		},
		{
			name:   "night action during the day",
			ref:    "sleep",
			reason: ReasonUnknownAction,
		},
		{
			name:   "menu index out of range",
			ref:    "9",
			reason: ReasonUnknownAction,
		},
		{
			name: "insufficient stamina",
			setup: func(t *testing.T, f *fixture) {
				f.patch(t, state.Patch{Stamina: state.Ptr(10)})
			},
			ref:    "trial",
			reason: ReasonInsufficientStamina,
		},
		{
			name: "no actions left",
			setup: func(t *testing.T, f *fixture) {
				f.patch(t, state.Patch{DayActions: state.Ptr(0)})
			},
			ref:    "rest",
			reason: ReasonNoActions,
		},
		{
			name: "game over",
			setup: func(t *testing.T, f *fixture) {
				f.patch(t, state.Patch{TechnicalDebt: state.Ptr(100)})
			},
			ref:    "prep",
			reason: ReasonGameOver,
		},
		{
			name: "after victory",
			setup: func(t *testing.T, f *fixture) {
				f.patch(t, state.Patch{DishProgress: state.Ptr(100)})
			},
			ref:    "trial",
			reason: ReasonGameOver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.Default(), 0.0)
			if tt.setup != nil {
				tt.setup(t, f)
			}
			events := f.executed()
			before := f.state.Snapshot()

			res := f.engine.ExecuteAction(tt.ref)

			assert.False(t, res.Success)
			assert.True(t, res.Rejected())
			assert.Equal(t, tt.reason, res.Reason)
			assert.NotEmpty(t, res.Message)
			assert.Equal(t, before, f.state.Snapshot())
			assert.Empty(t, *events)
			assert.Equal(t, 0, f.rolls.Drawn())
		})
	}
}

func TestExecuteAction_ResolvesFoldedNamesAndIndexes(t *testing.T) {
	for _, ref := range []string{"prep", "PREP", " Prep ", "1"} {
		f := newFixture(t, config.Default(), 0.0, 0.5)
		res := f.engine.ExecuteAction(ref)
		assert.Equal(t, "prep", res.Action, "ref=%q", ref)
		assert.False(t, res.Rejected(), "ref=%q", ref)
	}

	f := newFixture(t, config.Default(), 0.0, 0.5)
	f.patch(t, state.Patch{Phase: state.Ptr(state.PhaseNight)})
	res := f.engine.ExecuteAction("1")
	assert.Equal(t, "study", res.Action)
}

func TestExecuteAction_PolicyAndEpisodeCost(t *testing.T) {
	f := newFixture(t, config.Default())

	require.NoError(t, f.state.SetPolicy(state.PolicySpeed))
	c, ok := f.engine.Preview("stove")
	require.True(t, ok)
	assert.Equal(t, 16, c.StaminaCost)

	require.NoError(t, f.state.SetPolicy(state.PolicyChallenge))
	c, _ = f.engine.Preview("trial")
	assert.Equal(t, 30, c.StaminaCost)

	f.patch(t, state.Patch{Day: state.Ptr(5)})
	c, _ = f.engine.Preview("trial")
	assert.Equal(t, 36, c.StaminaCost, "inspection and challenge multiply")
}

func TestSuccessRate_Clamped(t *testing.T) {
	f := newFixture(t, config.Default())
	f.patch(t, state.Patch{
		Day:           state.Ptr(3),
		Stamina:       state.Ptr(20),
		TechnicalDebt: state.Ptr(70),
		Mood:          state.Ptr(20),
		Condition:     state.Ptr(state.ConditionTerrible),
		Policy:        state.Ptr(state.PolicyChallenge),
	})
	c, _ := f.engine.Preview("prep")
	assert.InDelta(t, 0.1, c.SuccessRate, 1e-9, "clamped to minimum")

	f.patch(t, state.Patch{
		Day:           state.Ptr(1),
		Stamina:       state.Ptr(100),
		TechnicalDebt: state.Ptr(0),
		Mood:          state.Ptr(90),
		Condition:     state.Ptr(state.ConditionSuperb),
		Policy:        state.Ptr(state.PolicySpeed),
	})
	c, _ = f.engine.Preview("prep")
	assert.InDelta(t, 0.95, c.SuccessRate, 1e-9, "clamped to maximum")
}

func TestSuccessRate_NeutralEqualsBase(t *testing.T) {
	f := newFixture(t, config.Default())
	f.neutralDay(t)

	c, _ := f.engine.Preview("prep")
	assert.InDelta(t, 0.6, c.SuccessRate, 1e-9)

	rest, _ := f.engine.Preview("rest")
	assert.Equal(t, 1.0, rest.SuccessRate)
}

func TestSuccessRate_CrisisEpisode(t *testing.T) {
	f := newFixture(t, config.Default())
	f.neutralDay(t)
	f.patch(t, state.Patch{Day: state.Ptr(5)})

	c, _ := f.engine.Preview("prep")
	assert.InDelta(t, 0.5, c.SuccessRate, 1e-9)
}

func TestExecuteAction_WithSuccessBonus(t *testing.T) {
	f := newFixture(t, config.Default(), 0.79, 0.9)
	f.neutralDay(t)

	res := f.engine.ExecuteAction("prep", WithSuccessBonus(0.2))
	assert.InDelta(t, 0.8, res.SuccessRate, 1e-9)
	assert.True(t, res.Success)
}

func TestExecuteAction_ConsumesPivotBonus(t *testing.T) {
	f := newFixture(t, config.Default(), 0.99, 0.9)
	f.neutralDay(t)
	f.state.SetPivotBonus(true)

	c, _ := f.engine.Preview("prep")
	assert.InDelta(t, 0.75, c.SuccessRate, 1e-9, "preview includes the pending bonus")

	res := f.engine.ExecuteAction("prep")
	assert.True(t, res.PivotBonusUsed)
	assert.InDelta(t, 0.75, res.SuccessRate, 1e-9)
	assert.False(t, f.state.Snapshot().PivotBonus)

	c, _ = f.engine.Preview("prep")
	assert.Less(t, c.SuccessRate, 0.75)
}

func TestExecuteAction_MonotonyPenalty(t *testing.T) {
	f := newFixture(t, config.Default(), 0.0, 0.5)

	first := f.engine.ExecuteAction("prep")
	second := f.engine.ExecuteAction("prep")
	third := f.engine.ExecuteAction("prep")

	assert.False(t, first.Monotony)
	assert.False(t, second.Monotony)
	assert.True(t, third.Monotony)
	assert.Equal(t, -8, third.MoodDelta, "+2 reward, -10 monotony")
	assert.Equal(t, 66, f.state.Snapshot().Mood)
}

func TestExecuteAction_NeverAdvancesDay(t *testing.T) {
	f := newFixture(t, config.Default(), 0.5, 0.5, 0.0)

	for i := 0; i < 100; i++ {
		res := f.engine.ExecuteAction("1")
		if res.Reason == ReasonNoActions && f.state.Phase() == state.PhaseDay {
			f.state.TransitionToNight()
		}
		require.Equal(t, 1, f.state.Day(), "iteration %d", i)
	}

	f.state.AdvanceDay()
	assert.Equal(t, 2, f.state.Day())
}

func TestAvailable(t *testing.T) {
	f := newFixture(t, config.Default())
	f.patch(t, state.Patch{Stamina: state.Ptr(15)})

	choices := f.engine.Available()
	require.Len(t, choices, 4)

	assert.Equal(t, Choice{Index: 1, Name: "prep", Label: "Knife prep", Kind: "train", StaminaCost: 15,
		SuccessRate: choices[0].SuccessRate, Affordable: true}, choices[0])
	assert.False(t, choices[1].Affordable, "stove costs 20")
	assert.False(t, choices[2].Affordable, "trial costs 25")
	assert.True(t, choices[3].Affordable, "rest is free")
	assert.Equal(t, 4, choices[3].Index)
}

func TestNew_DuplicateAction(t *testing.T) {
	cfg := config.Default()
	dup := cfg.Actions[0]
	dup.Name = "PREP"
	cfg.Actions = append(cfg.Actions, dup)

	_, err := New(state.New(cfg, eventbus.New(), testutil.NewRolls()), testutil.NewRolls())
	require.Error(t, err)
	assert.True(t, IsDuplicateAction(err))
}

func TestNew_UnknownKind(t *testing.T) {
	cfg := config.Default()
	cfg.Actions[0].Kind = "juggle"

	_, err := New(state.New(cfg, eventbus.New(), testutil.NewRolls()), testutil.NewRolls())
	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeUnknownKind, re.Code)
}

func TestWithHandler_CustomKind(t *testing.T) {
	cfg := config.Default()
	cfg.Actions = append(cfg.Actions, config.ActionDef{
		Name: "forage", Label: "Forage", Phase: config.PhaseDay, Kind: "forage",
	})
	bus := eventbus.New()
	src := testutil.NewRolls()
	gs := state.New(cfg, bus, src)

	e, err := New(gs, src, WithHandler("forage", func(t *Turn) Result {
		if !t.State().ConsumeAction() {
			return t.Reject(ReasonNoActions, "none left")
		}
		t.Result().Success = true
		return t.Finish()
	}))
	require.NoError(t, err)

	res := e.ExecuteAction("forage")
	assert.True(t, res.Success)
	assert.Equal(t, "Forage: success.", res.Message)
	assert.Equal(t, 2, gs.Remaining())
}

func TestWithEpisodes_Nil(t *testing.T) {
	bus := eventbus.New()
	src := testutil.NewRolls()
	gs := state.New(config.Default(), bus, src)
	e, err := New(gs, src, WithEpisodes(nil))
	require.NoError(t, err)

	c, _ := e.Preview("prep")
	assert.InDelta(t, 0.7, c.SuccessRate, 1e-9, "no opening-week bonus")
}
