package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides are the SPRINTCHEF_* variables understood by FromEnv.
// Unset variables leave the base configuration untouched.
type EnvOverrides struct {
	Difficulty          string `env:"SPRINTCHEF_DIFFICULTY"`
	MaxStamina          *int   `env:"SPRINTCHEF_MAX_STAMINA"`
	DayActions          *int   `env:"SPRINTCHEF_DAY_ACTIONS"`
	NightActions        *int   `env:"SPRINTCHEF_NIGHT_ACTIONS"`
	GoalDay             *int   `env:"SPRINTCHEF_GOAL_DAY"`
	PresentationDelayMS *int   `env:"SPRINTCHEF_PRESENTATION_DELAY_MS"`
}

// ParseEnv loads the override variables from the environment.
func ParseEnv() (EnvOverrides, error) {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return EnvOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// FromEnv applies environment overrides on top of base.
// SPRINTCHEF_DIFFICULTY replaces base with a preset before the individual
// overrides are applied.
func FromEnv(base Config) (Config, error) {
	o, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}
	return o.Apply(base)
}

// Apply returns base with the overrides applied.
func (o EnvOverrides) Apply(base Config) (Config, error) {
	cfg := base
	if o.Difficulty != "" {
		preset, ok := Preset(o.Difficulty)
		if !ok {
			return Config{}, fmt.Errorf("unknown difficulty %q", o.Difficulty)
		}
		cfg = preset
	}
	if o.MaxStamina != nil {
		cfg.Stamina.Max = *o.MaxStamina
	}
	if o.DayActions != nil {
		cfg.Phases.DayActions = *o.DayActions
	}
	if o.NightActions != nil {
		cfg.Phases.NightActions = *o.NightActions
	}
	if o.GoalDay != nil {
		cfg.Goal.Day = *o.GoalDay
	}
	if o.PresentationDelayMS != nil {
		cfg.Ceremony.PresentationDelayMS = *o.PresentationDelayMS
	}
	return cfg, nil
}
