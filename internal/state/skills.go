package state

import (
	"math"

	"github.com/roach88/sprintchef/internal/eventbus"
)

// Gain reports the effect of an experience grant on one skill.
type Gain struct {
	Skill        string `json:"skill"`
	Exp          int    `json:"exp"`
	LevelsGained int    `json:"levels_gained"`
	Level        int    `json:"level"`
	Experience   int    `json:"experience"`
}

// ExpMultiplier returns the multiplier applied to the next experience
// grant: condition times policy times the rest bonus, if pending.
func (s *GameState) ExpMultiplier() float64 {
	m := s.ConditionLevel().ExpMultiplier
	if pol, ok := s.cfg.Policies[string(s.cur.Policy)]; ok {
		m *= pol.ExpMultiplier
	}
	if s.cur.HasRestBonus {
		m *= s.cfg.Skills.RestBonusMultiplier
	}
	return m
}

// AddSkillExp grants base experience to one skill.
// See GrantExp.
func (s *GameState) AddSkillExp(skill string, base int) (Gain, error) {
	gains, err := s.GrantExp(map[string]int{skill: base})
	if err != nil || len(gains) == 0 {
		return Gain{Skill: skill, Level: s.cur.Skills[skill], Experience: s.cur.Experience[skill]}, err
	}
	return gains[0], nil
}

// GrantExp grants base experience to several skills in one step.
//
// The multiplier is computed once, so a pending rest bonus is consumed once
// no matter how many skills are granted. Each grant is floored after
// multiplying. Experience beyond the per-level threshold rolls into further
// levels until the level cap; at the cap stored experience stops at one below
// the threshold.
//
// Gains are reported in configured skill order. skill-level-up is published
// once per level gained.
func (s *GameState) GrantExp(grants map[string]int) ([]Gain, error) {
	for id, base := range grants {
		if !s.cfg.HasSkill(id) {
			return nil, s.reject("grant exp", newError(ErrKindUnknownSkill, FieldExperience, "unknown skill %q", id))
		}
		if base < 0 {
			return nil, s.reject("grant exp", newError(ErrKindNegativeAmount, FieldExperience, "negative experience %d for %q", base, id))
		}
	}
	if len(grants) == 0 {
		return nil, nil
	}

	mult := s.ExpMultiplier()
	per := s.cfg.Skills.ExpPerLevel
	maxLevel := s.cfg.Skills.MaxLevel

	skills := make(map[string]int, len(grants))
	experience := make(map[string]int, len(grants))
	var gains []Gain
	for _, id := range s.cfg.Skills.IDs {
		base, ok := grants[id]
		if !ok {
			continue
		}
		// The epsilon absorbs float error such as 100*1.15 = 114.99999999999999.
		actual := int(math.Floor(float64(base)*mult + 1e-9))
		lvl := s.cur.Skills[id]
		exp := s.cur.Experience[id] + actual
		gained := 0
		for exp >= per && lvl < maxLevel {
			lvl++
			exp -= per
			gained++
		}
		if lvl >= maxLevel && exp > per-1 {
			exp = per - 1
		}
		skills[id] = lvl
		experience[id] = exp
		gains = append(gains, Gain{Skill: id, Exp: actual, LevelsGained: gained, Level: lvl, Experience: exp})
	}

	p := Patch{Skills: skills, Experience: experience}
	if s.cur.HasRestBonus {
		p.HasRestBonus = Ptr(false)
	}
	if _, err := s.Update(p); err != nil {
		return nil, err
	}

	for _, g := range gains {
		for i := g.LevelsGained - 1; i >= 0; i-- {
			s.emit(eventbus.TopicSkillLevelUp, SkillLevelUp{Skill: g.Skill, Level: g.Level - i})
		}
	}
	return gains, nil
}

// Level returns the level of a skill.
func (s *GameState) Level(skill string) int {
	return s.cur.Skills[skill]
}
