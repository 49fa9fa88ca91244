package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/eventbus"
)

func TestAddSkillExp_MultipleLevelUps(t *testing.T) {
	s, bus, _ := newTestState(t, config.Default())
	events := record(bus, eventbus.TopicSkillLevelUp)

	gain, err := s.AddSkillExp("knife", 250)
	require.NoError(t, err)

	assert.Equal(t, Gain{Skill: "knife", Exp: 250, LevelsGained: 2, Level: 2, Experience: 50}, gain)
	assert.Equal(t, 2, s.Level("knife"))
	assert.Equal(t, 50, s.Snapshot().Experience["knife"])

	require.Len(t, *events, 2)
	assert.Equal(t, SkillLevelUp{Skill: "knife", Level: 1}, (*events)[0].Payload)
	assert.Equal(t, SkillLevelUp{Skill: "knife", Level: 2}, (*events)[1].Payload)
}

func TestAddSkillExp_CapsAtMaxLevel(t *testing.T) {
	s, _, _ := newTestState(t, config.Default())
	_, err := s.Update(Patch{Skills: map[string]int{"heat": 9}})
	require.NoError(t, err)

	gain, err := s.AddSkillExp("heat", 500)
	require.NoError(t, err)
	assert.Equal(t, 10, gain.Level)
	assert.Equal(t, 99, gain.Experience)

	gain, err = s.AddSkillExp("heat", 500)
	require.NoError(t, err)
	assert.Equal(t, 10, gain.Level)
	assert.Equal(t, 0, gain.LevelsGained)
	assert.Equal(t, 99, gain.Experience)
}

func TestGrantExp_RestBonusConsumedOnce(t *testing.T) {
	s, _, _ := newTestState(t, config.Default())
	s.SetRestBonus(true)

	gains, err := s.GrantExp(map[string]int{"knife": 100, "heat": 100})
	require.NoError(t, err)
	require.Len(t, gains, 2)
	assert.Equal(t, "knife", gains[0].Skill, "configured skill order")
	assert.Equal(t, 120, gains[0].Exp)
	assert.Equal(t, 120, gains[1].Exp)
	assert.False(t, s.Snapshot().HasRestBonus)

	gain, err := s.AddSkillExp("knife", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, gain.Exp, "bonus already spent")
	assert.Equal(t, 2, gain.Level)
	assert.Equal(t, 20, gain.Experience)
}

func TestGrantExp_ConditionAndPolicyMultiplier(t *testing.T) {
	s, _, _ := newTestState(t, config.Default())
	_, err := s.Update(Patch{Condition: Ptr(ConditionGood), Policy: Ptr(PolicyChallenge)})
	require.NoError(t, err)

	gain, err := s.AddSkillExp("taste", 100)
	require.NoError(t, err)
	assert.Equal(t, 180, gain.Exp, "1.2 * 1.5")
}

func TestGrantExp_FloorsFraction(t *testing.T) {
	s, _, _ := newTestState(t, config.Default())
	_, err := s.Update(Patch{Condition: Ptr(ConditionBad)})
	require.NoError(t, err)

	gain, err := s.AddSkillExp("taste", 33)
	require.NoError(t, err)
	assert.Equal(t, 26, gain.Exp, "33 * 0.8 = 26.4")
}

func TestGrantExp_RejectsWithoutMutation(t *testing.T) {
	s, bus, _ := newTestState(t, config.Default())
	events := record(bus, eventbus.TopicStateChanged)
	s.SetRestBonus(true)
	*events = nil

	_, err := s.GrantExp(map[string]int{"knife": 10, "wok": 10})
	assert.Equal(t, ErrKindUnknownSkill, KindOf(err))

	_, err = s.GrantExp(map[string]int{"knife": -10})
	assert.Equal(t, ErrKindNegativeAmount, KindOf(err))

	assert.Equal(t, 0, s.Snapshot().Experience["knife"])
	assert.True(t, s.Snapshot().HasRestBonus)
	assert.Empty(t, *events)
}

func TestTryImproveCondition_CumulativeWalk(t *testing.T) {
	tests := []struct {
		roll float64
		want Condition
	}{
		{0.0, ConditionSuperb},
		{0.19, ConditionSuperb},
		{0.2, ConditionGood},
		{0.49, ConditionGood},
		{0.5, ConditionNormal},
		{0.999, ConditionNormal},
	}

	for _, tt := range tests {
		cfg := config.Default()
		cfg.Conditions.Levels["normal"] = config.ConditionLevel{
			ExpMultiplier: 1, DishMultiplier: 1,
			Transitions: map[string]float64{"superb": 0.2, "good": 0.3, "normal": 0.5},
		}
		s, _, _ := newTestState(t, cfg, tt.roll)

		got, changed := s.TryImproveCondition()
		assert.Equal(t, tt.want, got, "roll=%v", tt.roll)
		assert.Equal(t, tt.want != ConditionNormal, changed, "roll=%v", tt.roll)
		assert.Equal(t, tt.want, s.Condition())
	}
}

func TestTryImproveCondition_UnassignedMassStays(t *testing.T) {
	cfg := config.Default()
	cfg.Conditions.Levels["bad"] = config.ConditionLevel{
		ExpMultiplier: 0.8, DishMultiplier: 0.85,
		Transitions: map[string]float64{"normal": 0.3},
	}
	s, bus, _ := newTestState(t, cfg, 0.5)
	_, err := s.Update(Patch{Condition: Ptr(ConditionBad)})
	require.NoError(t, err)
	events := record(bus, eventbus.TopicConditionChange)

	got, changed := s.TryImproveCondition()
	assert.Equal(t, ConditionBad, got)
	assert.False(t, changed)
	assert.Empty(t, *events)
}

func TestTryImproveCondition_EmitsConditionChanged(t *testing.T) {
	s, bus, _ := newTestState(t, config.Default(), 0.1)
	events := record(bus, eventbus.TopicConditionChange)

	got, changed := s.TryImproveCondition()
	require.True(t, changed)
	assert.Equal(t, ConditionGood, got)
	require.Len(t, *events, 1)
	assert.Equal(t, ConditionChanged{From: ConditionNormal, To: ConditionGood, Cause: CauseRest}, (*events)[0].Payload)
}

func TestDecayCondition_StepsTowardTerrible(t *testing.T) {
	s, _, _ := newTestState(t, config.Default())

	got, changed := s.DecayCondition()
	assert.True(t, changed)
	assert.Equal(t, ConditionBad, got)

	got, _ = s.DecayCondition()
	assert.Equal(t, ConditionTerrible, got)

	got, changed = s.DecayCondition()
	assert.False(t, changed)
	assert.Equal(t, ConditionTerrible, got)
}

func TestCondition_Order(t *testing.T) {
	assert.Equal(t, []Condition{
		ConditionSuperb, ConditionGood, ConditionNormal, ConditionBad, ConditionTerrible,
	}, Conditions())
	assert.Equal(t, ConditionGood, ConditionSuperb.Worse())
	assert.Equal(t, -1, Condition("meh").Rank())
	assert.False(t, Condition("meh").Valid())
	assert.Equal(t, Condition("meh"), Condition("meh").Worse())
}
