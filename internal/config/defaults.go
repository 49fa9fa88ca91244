package config

// Default returns the standard balance configuration.
func Default() Config {
	return Config{
		Version: "1",
		Skills: SkillCurve{
			IDs:                 []string{"knife", "heat", "taste", "plating"},
			MaxLevel:            10,
			ExpPerLevel:         100,
			RestBonusMultiplier: 1.2,
		},
		Conditions: ConditionTable{
			Initial:     "normal",
			DecayChance: 0.3,
			Levels: map[string]ConditionLevel{
				"superb": {
					ExpMultiplier: 1.5, DishMultiplier: 1.3, SuccessBonus: 0.15,
					Transitions: map[string]float64{"superb": 1.0},
				},
				"good": {
					ExpMultiplier: 1.2, DishMultiplier: 1.15, SuccessBonus: 0.08,
					Transitions: map[string]float64{"superb": 0.3, "good": 0.7},
				},
				"normal": {
					ExpMultiplier: 1.0, DishMultiplier: 1.0, SuccessBonus: 0,
					Transitions: map[string]float64{"good": 0.5, "normal": 0.5},
				},
				"bad": {
					ExpMultiplier: 0.8, DishMultiplier: 0.85, SuccessBonus: -0.08,
					Transitions: map[string]float64{"normal": 0.6, "bad": 0.4},
				},
				"terrible": {
					ExpMultiplier: 0.6, DishMultiplier: 0.7, SuccessBonus: -0.15,
					Transitions: map[string]float64{"bad": 0.7, "terrible": 0.3},
				},
			},
		},
		Stamina: Stamina{
			Max:               100,
			Initial:           100,
			OvernightRecovery: 40,
			HighThreshold:     70,
			LowThreshold:      30,
			HighBonus:         0.05,
			LowPenalty:        0.1,
		},
		Debt: Debt{
			Max:            100,
			Initial:        0,
			FailurePenalty: 10,
			LowThreshold:   20,
			HighThreshold:  60,
			LowBonus:       0.05,
			HighPenalty:    0.1,
		},
		Mood: Mood{
			Max:              100,
			Initial:          70,
			PenaltyThreshold: 30,
			Penalty:          0.1,
		},
		Success: SuccessFormula{
			Base:           0.6,
			Minimum:        0.1,
			Maximum:        0.95,
			CriticalChance: 0.1,
			CrisisPenalty:  0.1,
			PivotBonus:     0.15,
			FailureExp:     5,
		},
		Phases: PhaseLimits{
			DayActions:   3,
			NightActions: 1,
		},
		Policies: map[string]Policy{
			"quality": {
				Label:                 "Quality first",
				ExpMultiplier:         1.2,
				SuccessRate:           -0.05,
				StaminaCostMultiplier: 1.0,
			},
			"speed": {
				Label:                 "Move fast",
				ExpMultiplier:         0.9,
				SuccessRate:           0.05,
				StaminaCostMultiplier: 0.8,
			},
			"challenge": {
				Label:                 "Stretch goal",
				ExpMultiplier:         1.5,
				SuccessRate:           -0.15,
				StaminaCostMultiplier: 1.2,
			},
		},
		Actions: []ActionDef{
			{
				Name: "prep", Label: "Knife prep", Phase: PhaseDay, Kind: KindTrain, StaminaCost: 15,
				Base:     RewardTier{Exp: map[string]int{"knife": 30, "taste": 10}, Mood: 2},
				Critical: RewardTier{Exp: map[string]int{"knife": 50, "taste": 20}, Mood: 5},
			},
			{
				Name: "stove", Label: "Stove drills", Phase: PhaseDay, Kind: KindTrain, StaminaCost: 20,
				Base:     RewardTier{Exp: map[string]int{"heat": 35}, Mood: 2},
				Critical: RewardTier{Exp: map[string]int{"heat": 55}, Mood: 5},
			},
			{
				Name: "trial", Label: "Trial dish", Phase: PhaseDay, Kind: KindTrial, StaminaCost: 25,
				Base:     RewardTier{Exp: map[string]int{"plating": 15}, Progress: 10},
				Critical: RewardTier{Exp: map[string]int{"plating": 25}, Mood: 10, Progress: 15},
				SkillWeights: map[string]float64{
					"knife": 1.5, "heat": 1.5, "taste": 1.0, "plating": 1.0,
				},
			},
			{
				Name: "rest", Label: "Take a break", Phase: PhaseDay, Kind: KindRest,
				Recovery: 60, ImproveChance: 0.5,
			},
			{
				Name: "study", Label: "Study recipes", Phase: PhaseNight, Kind: KindTrain, StaminaCost: 10,
				Base:     RewardTier{Exp: map[string]int{"taste": 25, "plating": 10}},
				Critical: RewardTier{Exp: map[string]int{"taste": 40, "plating": 20}, Mood: 3},
			},
			{
				Name: "cleanup", Label: "Clean the station", Phase: PhaseNight, Kind: KindTrain, StaminaCost: 10,
				Base:     RewardTier{Debt: -10},
				Critical: RewardTier{Debt: -20, Mood: 5},
			},
			{
				Name: "sleep", Label: "Sleep early", Phase: PhaseNight, Kind: KindRest,
				Recovery: 30, ImproveChance: 0.3,
			},
		},
		Monotony: Monotony{Streak: 3, MoodPenalty: 10},
		History:  History{Limit: 50},
		Goal:     Goal{Day: 7, TargetProgress: 100},
		Pivot: Pivot{
			FailureThreshold: 2,
			ProgressCost:     10,
			DebtReduction:    20,
		},
		Ceremony: Ceremony{PresentationDelayMS: 1200},
		RandomEvents: RandomEvents{
			Chance: 0.25,
			Table: []RandomEvent{
				{ID: "rush_order", Message: "A rush order eats into your morning.", Weight: 2, Stamina: -10, Mood: -5},
				{ID: "praise", Message: "The head chef praised yesterday's work.", Weight: 2, Mood: 10},
				{ID: "supplier_delay", Message: "A supplier is late; shortcuts pile up.", Weight: 1, Debt: 10},
				{ID: "free_sample", Message: "A vendor drops off free samples.", Weight: 1, Stamina: 10},
			},
		},
		Episodes: []Episode{
			{ID: "opening_week", Name: "Opening Week", StartDay: 1, EndDay: 2, SuccessRate: 0.05},
			{ID: "inspection", Name: "Health Inspection", StartDay: 5, EndDay: 5, StaminaCostMultiplier: 1.2, Crisis: true},
			{ID: "final_tasting", Name: "Final Tasting", StartDay: 7, EndDay: 7},
		},
		Retry: Retry{SkillRetention: 0.5},
	}
}

// Casual returns an easier balance for casual play.
func Casual() Config {
	cfg := Default()
	cfg.Success.Base = 0.7
	cfg.Stamina.OvernightRecovery = 60
	cfg.Conditions.DecayChance = 0.15
	cfg.Debt.FailurePenalty = 5
	cfg.Goal.Day = 9
	return cfg
}

// Hard returns a harsher balance for experienced players.
func Hard() Config {
	cfg := Default()
	cfg.Success.Base = 0.5
	cfg.Stamina.OvernightRecovery = 30
	cfg.Conditions.DecayChance = 0.45
	cfg.Debt.FailurePenalty = 15
	cfg.Goal.Day = 6
	cfg.RandomEvents.Chance = 0.4
	return cfg
}

// Preset returns the named preset. Unknown names return false.
func Preset(name string) (Config, bool) {
	switch name {
	case "", "default", "normal":
		return Default(), true
	case "casual":
		return Casual(), true
	case "hard":
		return Hard(), true
	}
	return Config{}, false
}
