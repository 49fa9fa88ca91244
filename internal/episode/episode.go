// Package episode maps days to the configured narrative episodes and the
// modifiers they apply to action resolution.
package episode

import "github.com/roach88/sprintchef/internal/config"

// Modifiers are the adjustments an episode applies to one day.
// The zero value is not neutral; use Neutral.
type Modifiers struct {
	ID                    string
	Name                  string
	SuccessRate           float64
	StaminaCostMultiplier float64
	Crisis                bool
}

// Neutral returns modifiers that change nothing.
func Neutral() Modifiers {
	return Modifiers{StaminaCostMultiplier: 1}
}

// Provider supplies the modifiers in effect on a day.
type Provider interface {
	Modifiers(day int) Modifiers
}

// Started is the episode-started payload.
type Started struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Day    int    `json:"day"`
	EndDay int    `json:"end_day"`
	Crisis bool   `json:"crisis"`
}

// Schedule is a Provider backed by the configured episode list.
// When spans overlap, the first declared episode wins.
type Schedule struct {
	episodes []config.Episode
}

// NewSchedule creates a schedule over episodes.
func NewSchedule(episodes []config.Episode) *Schedule {
	return &Schedule{episodes: append([]config.Episode(nil), episodes...)}
}

// Active returns the episode covering day.
func (s *Schedule) Active(day int) (config.Episode, bool) {
	for _, ep := range s.episodes {
		if day >= ep.StartDay && day <= ep.EndDay {
			return ep, true
		}
	}
	return config.Episode{}, false
}

// StartsOn returns the episode that begins on day.
func (s *Schedule) StartsOn(day int) (Started, bool) {
	ep, ok := s.Active(day)
	if !ok || ep.StartDay != day {
		return Started{}, false
	}
	return Started{ID: ep.ID, Name: ep.Name, Day: day, EndDay: ep.EndDay, Crisis: ep.Crisis}, true
}

// Modifiers implements Provider.
func (s *Schedule) Modifiers(day int) Modifiers {
	ep, ok := s.Active(day)
	if !ok {
		return Neutral()
	}
	m := Modifiers{
		ID:                    ep.ID,
		Name:                  ep.Name,
		SuccessRate:           ep.SuccessRate,
		StaminaCostMultiplier: ep.StaminaCostMultiplier,
		Crisis:                ep.Crisis,
	}
	if m.StaminaCostMultiplier <= 0 {
		m.StaminaCostMultiplier = 1
	}
	return m
}
