package state

// GameOverReason explains why a run ended in a loss.
type GameOverReason string

const (
	GameOverNone      GameOverReason = ""
	GameOverDebt      GameOverReason = "technical_debt"
	GameOverMood      GameOverReason = "mood"
	GameOverExhausted GameOverReason = "exhausted"
	GameOverDeadline  GameOverReason = "deadline"
)

// IsGameOver reports whether the run is lost: technical debt at its cap,
// mood at zero, no stamina while terrible, or the goal day passed without
// victory. Pure function of the current state.
func (s *GameState) IsGameOver() (bool, GameOverReason) {
	switch {
	case s.cur.TechnicalDebt >= s.cfg.Debt.Max:
		return true, GameOverDebt
	case s.cur.Mood <= 0:
		return true, GameOverMood
	case s.cur.Stamina <= 0 && s.cur.Condition == ConditionTerrible:
		return true, GameOverExhausted
	case s.cur.Day > s.cfg.Goal.Day && !s.IsVictory():
		return true, GameOverDeadline
	}
	return false, GameOverNone
}

// IsVictory reports whether dish progress reached the target on or before
// the goal day.
func (s *GameState) IsVictory() bool {
	return s.cur.Day <= s.cfg.Goal.Day && s.cur.DishProgress >= s.cfg.Goal.TargetProgress
}
