package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/sprintchef/internal/ceremony"
	"github.com/roach88/sprintchef/internal/config"
	"github.com/roach88/sprintchef/internal/engine"
	"github.com/roach88/sprintchef/internal/episode"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
)

// narrator prints bus events for the player. In json format every event
// is written as one JSON line instead.
type narrator struct {
	w    io.Writer
	json bool
	subs []eventbus.Subscription
}

// narratedTopics are the topics shown in text mode. state-changed and
// action-consumed are too chatty for a terminal.
var narratedTopics = []eventbus.Topic{
	eventbus.TopicCeremonyChanged,
	eventbus.TopicEpisodeStarted,
	eventbus.TopicRandomEvent,
	eventbus.TopicActionExecuted,
	eventbus.TopicSkillLevelUp,
	eventbus.TopicConditionChange,
	eventbus.TopicDishProgress,
	eventbus.TopicPivotOffered,
	eventbus.TopicPivotResolved,
	eventbus.TopicRetrospective,
	eventbus.TopicDayAdvanced,
	eventbus.TopicVictory,
	eventbus.TopicGameOver,
}

// eventLine is the json-format rendering of one event.
type eventLine struct {
	Seq     int64          `json:"seq"`
	Topic   eventbus.Topic `json:"topic"`
	Payload any            `json:"payload"`
}

func attachNarrator(bus *eventbus.Bus, w io.Writer, jsonLines bool) *narrator {
	n := &narrator{w: w, json: jsonLines}
	topics := narratedTopics
	if jsonLines {
		topics = eventbus.AllTopics()
	}
	for _, topic := range topics {
		n.subs = append(n.subs, bus.On(topic, n.handle))
	}
	return n
}

func (n *narrator) detach() {
	for _, s := range n.subs {
		s.Unsubscribe()
	}
	n.subs = nil
}

func (n *narrator) handle(ev eventbus.Event) {
	if n.json {
		_ = json.NewEncoder(n.w).Encode(eventLine{Seq: ev.Seq, Topic: ev.Topic, Payload: ev.Payload})
		return
	}
	if line := narrate(ev.Payload); line != "" {
		fmt.Fprintln(n.w, line)
	}
}

func narrate(payload any) string {
	switch p := payload.(type) {
	case ceremony.StageChanged:
		switch p.To {
		case ceremony.StageMorning:
			return fmt.Sprintf("\n=== Day %d: morning ===", p.Day)
		case ceremony.StageNight:
			return fmt.Sprintf("\n=== Day %d: night ===", p.Day)
		}
	case episode.Started:
		if p.Crisis {
			return fmt.Sprintf("Episode: %s (crisis, until day %d)", p.Name, p.EndDay)
		}
		return fmt.Sprintf("Episode: %s (until day %d)", p.Name, p.EndDay)
	case ceremony.RandomEvent:
		return fmt.Sprintf("! %s%s", p.Message, deltas(p.Stamina, p.Mood, p.Debt))
	case engine.Result:
		if p.Kind == config.KindRest {
			return fmt.Sprintf("> %s: %s (stamina +%d, %d left)", p.Label, p.Message, p.StaminaRecovered, p.Remaining)
		}
		return fmt.Sprintf("> %s: %s (stamina -%d, %d left)", p.Label, p.Message, p.StaminaCost, p.Remaining)
	case state.SkillLevelUp:
		return fmt.Sprintf("  %s reached level %d", p.Skill, p.Level)
	case state.ConditionChanged:
		return fmt.Sprintf("  condition %s -> %s", p.From, p.To)
	case state.DishProgress:
		return fmt.Sprintf("  dish %d%% -> %d%%", p.Before, p.After)
	case ceremony.PivotOffer:
		return fmt.Sprintf("? %s failed %d times today. Pivot: -%d%% dish progress, -%d debt. (accept|decline)",
			p.Action, p.Failures, p.ProgressCost, p.DebtReduction)
	case ceremony.PivotResolution:
		if p.Accepted {
			return fmt.Sprintf("  pivot accepted%s", deltas(0, 0, p.DebtDelta))
		}
		return "  pivot declined"
	case ceremony.Retrospective:
		return retrospectiveText(p)
	case state.DayAdvanced:
		return fmt.Sprintf("  slept: stamina +%d, condition %s", p.StaminaRecovered, p.Condition)
	case ceremony.Victory:
		return fmt.Sprintf("\n*** The dish is ready on day %d (%d%%). Victory! ***", p.Day, p.DishProgress)
	case ceremony.GameOver:
		return fmt.Sprintf("\n*** Game over on day %d: %s ***", p.Day, p.Reason)
	}
	return ""
}

func retrospectiveText(r ceremony.Retrospective) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrospective, day %d: %s", r.Day, strings.Join(r.Actions, ", "))
	b.WriteString(deltas(r.StaminaDelta, r.MoodDelta, r.DebtDelta))
	if r.ProgressDelta != 0 {
		fmt.Fprintf(&b, "\n  dish %+d%%", r.ProgressDelta)
	}
	skills := make([]string, 0, len(r.LevelsGained))
	for skill := range r.LevelsGained {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		fmt.Fprintf(&b, "\n  %s +%d level(s)", skill, r.LevelsGained[skill])
	}
	if r.ConditionBefore != r.ConditionAfter {
		fmt.Fprintf(&b, "\n  condition %s -> %s", r.ConditionBefore, r.ConditionAfter)
	}
	return b.String()
}

func deltas(stamina, mood, debt int) string {
	var parts []string
	if stamina != 0 {
		parts = append(parts, fmt.Sprintf("stamina %+d", stamina))
	}
	if mood != 0 {
		parts = append(parts, fmt.Sprintf("mood %+d", mood))
	}
	if debt != 0 {
		parts = append(parts, fmt.Sprintf("debt %+d", debt))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
