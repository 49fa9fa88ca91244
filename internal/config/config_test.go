package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestPresets_Validate(t *testing.T) {
	for _, name := range []string{"default", "casual", "hard"} {
		t.Run(name, func(t *testing.T) {
			cfg, ok := Preset(name)
			require.True(t, ok)
			assert.Empty(t, Validate(cfg))
		})
	}
}

func TestPreset_Unknown(t *testing.T) {
	_, ok := Preset("nightmare")
	assert.False(t, ok)
}

func TestValidate_SchemaRejectsOutOfRangeProbability(t *testing.T) {
	cfg := Default()
	cfg.Success.Base = 1.5

	errs := Validate(cfg)
	require.NotEmpty(t, errs)
	assert.Contains(t, codes(errs), ErrSchema)
}

func TestValidate_SchemaRejectsUnknownPhase(t *testing.T) {
	cfg := Default()
	cfg.Actions[0].Phase = "evening"

	assert.Contains(t, codes(Validate(cfg)), ErrSchema)
}

func TestValidate_UnknownSkill(t *testing.T) {
	cfg := Default()
	cfg.Actions[0].Base.Exp["wok"] = 10

	errs := Validate(cfg)
	assert.Contains(t, codes(errs), ErrUnknownSkill)
}

func TestValidate_DuplicateAction(t *testing.T) {
	cfg := Default()
	cfg.Actions = append(cfg.Actions, cfg.Actions[0])

	assert.Contains(t, codes(Validate(cfg)), ErrDuplicateAction)
}

func TestValidate_SameNameDifferentPhase(t *testing.T) {
	cfg := Default()
	dup := cfg.Actions[0]
	dup.Phase = PhaseNight
	cfg.Actions = append(cfg.Actions, dup)

	assert.Empty(t, Validate(cfg))
}

func TestValidate_MissingConditionLevel(t *testing.T) {
	cfg := Default()
	delete(cfg.Conditions.Levels, "bad")

	assert.Contains(t, codes(Validate(cfg)), ErrMissingCondition)
}

func TestValidate_TransitionMassAboveOne(t *testing.T) {
	cfg := Default()
	level := cfg.Conditions.Levels["normal"]
	level.Transitions = map[string]float64{"good": 0.8, "normal": 0.5}
	cfg.Conditions.Levels["normal"] = level

	assert.Contains(t, codes(Validate(cfg)), ErrTransitionMass)
}

func TestValidate_InitialAboveMax(t *testing.T) {
	cfg := Default()
	cfg.Stamina.Initial = cfg.Stamina.Max + 1

	assert.Contains(t, codes(Validate(cfg)), ErrInitialAboveMax)
}

func TestValidate_EmptyNightPhase(t *testing.T) {
	cfg := Default()
	cfg.Actions = cfg.ActionsFor(PhaseDay)

	assert.Contains(t, codes(Validate(cfg)), ErrEmptyPhase)
}

func TestValidate_EpisodeRange(t *testing.T) {
	cfg := Default()
	cfg.Episodes[0].EndDay = 0
	cfg.Episodes[0].StartDay = 3

	assert.Contains(t, codes(Validate(cfg)), ErrEpisodeRange)
}

func TestValidate_NumericActionName(t *testing.T) {
	cfg := Default()
	cfg.Actions[0].Name = "2"

	assert.Contains(t, codes(Validate(cfg)), ErrNumericActionName)
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "stamina.initial", Message: "too big", Code: ErrInitialAboveMax}
	assert.Equal(t, "[E206] stamina.initial: too big", e.Error())
}

func TestConfig_ActionsFor(t *testing.T) {
	cfg := Default()

	day := cfg.ActionsFor(PhaseDay)
	require.Len(t, day, 4)
	assert.Equal(t, "prep", day[0].Name)
	assert.Equal(t, "rest", day[3].Name)

	night := cfg.ActionsFor(PhaseNight)
	require.Len(t, night, 3)
	assert.Equal(t, "study", night[0].Name)
}

func TestConfig_ActionLimit(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.ActionLimit(PhaseDay))
	assert.Equal(t, 1, cfg.ActionLimit(PhaseNight))
}

func TestConfig_HasSkill(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.HasSkill("knife"))
	assert.False(t, cfg.HasSkill("wok"))
}

func TestConfig_CloneIsDeep(t *testing.T) {
	cfg := Default()
	clone, err := cfg.Clone()
	require.NoError(t, err)

	clone.Actions[0].Base.Exp["knife"] = 999
	clone.Policies["speed"] = Policy{Label: "changed"}

	assert.Equal(t, 30, cfg.Actions[0].Base.Exp["knife"])
	assert.Equal(t, "Move fast", cfg.Policies["speed"].Label)
}

func TestDecode_PartialOverride(t *testing.T) {
	data := []byte(`
stamina:
  max: 120
phases:
  day_actions: 4
`)
	cfg, err := Decode(data, Default())
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Stamina.Max)
	assert.Equal(t, 100, cfg.Stamina.Initial, "unspecified fields keep base values")
	assert.Equal(t, 4, cfg.Phases.DayActions)
	assert.Equal(t, 1, cfg.Phases.NightActions)
	assert.Len(t, cfg.Actions, 7)
}

func TestDecode_DoesNotTouchBase(t *testing.T) {
	base := Default()
	_, err := Decode([]byte("skills:\n  ids: [knife]\n"), base)
	require.NoError(t, err)

	assert.Len(t, base.Skills.IDs, 4)
}

func TestDecode_UnknownFieldRejected(t *testing.T) {
	_, err := Decode([]byte("stamina:\n  maximum: 120\n"), Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg, err := Decode(nil, Default())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestMarshal_DecodeRestoresConfig(t *testing.T) {
	data, err := Marshal(Hard())
	require.NoError(t, err)

	cfg, err := Decode(data, Default())
	require.NoError(t, err)
	assert.Equal(t, Hard(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("goal:\n  day: 10\n  target_progress: 80\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Goal.Day)
	assert.Equal(t, 80, cfg.Goal.TargetProgress)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SPRINTCHEF_DAY_ACTIONS", "5")
	t.Setenv("SPRINTCHEF_PRESENTATION_DELAY_MS", "0")

	cfg, err := FromEnv(Default())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Phases.DayActions)
	assert.Equal(t, 0, cfg.Ceremony.PresentationDelayMS)
	assert.Equal(t, 1, cfg.Phases.NightActions)
}

func TestFromEnv_DifficultyReplacesBase(t *testing.T) {
	t.Setenv("SPRINTCHEF_DIFFICULTY", "hard")
	t.Setenv("SPRINTCHEF_GOAL_DAY", "8")

	base := Default()
	base.Stamina.Max = 500

	cfg, err := FromEnv(base)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Stamina.Max)
	assert.Equal(t, Hard().Success.Base, cfg.Success.Base)
	assert.Equal(t, 8, cfg.Goal.Day)
}

func TestFromEnv_UnknownDifficulty(t *testing.T) {
	t.Setenv("SPRINTCHEF_DIFFICULTY", "nightmare")

	_, err := FromEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nightmare")
}

func TestFromEnv_BadInteger(t *testing.T) {
	t.Setenv("SPRINTCHEF_MAX_STAMINA", "lots")

	_, err := FromEnv(Default())
	require.Error(t, err)
}
