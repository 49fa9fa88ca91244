package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sprintchef/internal/ceremony"
	"github.com/roach88/sprintchef/internal/engine"
	"github.com/roach88/sprintchef/internal/episode"
	"github.com/roach88/sprintchef/internal/eventbus"
	"github.com/roach88/sprintchef/internal/state"
)

// recorder appends bus events to a result trace.
type recorder struct {
	result *Result
	day    func() int
	subs   []eventbus.Subscription
}

// attach subscribes to every topic except state-changed. It must be called
// before any other subscriber so nested emissions keep their causal order.
func (r *recorder) attach(bus *eventbus.Bus) {
	for _, topic := range eventbus.AllTopics() {
		if topic == eventbus.TopicStateChanged {
			continue
		}
		r.subs = append(r.subs, bus.On(topic, r.record))
	}
}

func (r *recorder) detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
}

func (r *recorder) record(ev eventbus.Event) {
	day := 0
	if r.day != nil {
		day = r.day()
	}
	r.result.Trace = append(r.result.Trace, TraceEvent{
		Seq:     ev.Seq,
		Topic:   ev.Topic,
		Day:     day,
		Summary: summarize(ev.Payload),
		Payload: ev.Payload,
	})
}

// summarize renders the identifying part of a payload on one line.
func summarize(payload any) string {
	switch p := payload.(type) {
	case engine.Result:
		return fmt.Sprintf("%s %s", p.Action, outcome(p))
	case state.ActionConsumed:
		return fmt.Sprintf("%s remaining=%d", p.Phase, p.Remaining)
	case state.PhaseChanged:
		return fmt.Sprintf("%s -> %s", p.From, p.To)
	case state.ConditionChanged:
		return fmt.Sprintf("%s -> %s (%s)", p.From, p.To, p.Cause)
	case state.SkillLevelUp:
		return fmt.Sprintf("%s level=%d", p.Skill, p.Level)
	case state.DishProgress:
		return fmt.Sprintf("%d -> %d", p.Before, p.After)
	case state.DayAdvanced:
		return fmt.Sprintf("day=%d condition=%s", p.Day, p.Condition)
	case state.StateReset:
		return fmt.Sprintf("%s day=%d", p.Mode, p.Day)
	case ceremony.StageChanged:
		return fmt.Sprintf("%s -> %s day=%d", p.From, p.To, p.Day)
	case ceremony.PivotOffer:
		return fmt.Sprintf("%s failures=%d", p.Action, p.Failures)
	case ceremony.PivotResolution:
		return fmt.Sprintf("%s accepted=%t", p.Action, p.Accepted)
	case ceremony.RandomEvent:
		return fmt.Sprintf("%s day=%d", p.ID, p.Day)
	case ceremony.Retrospective:
		return fmt.Sprintf("day=%d actions=%s", p.Day, strings.Join(p.Actions, ","))
	case ceremony.GameOver:
		return fmt.Sprintf("day=%d reason=%s", p.Day, p.Reason)
	case ceremony.Victory:
		return fmt.Sprintf("day=%d progress=%d", p.Day, p.DishProgress)
	case episode.Started:
		return fmt.Sprintf("%s day=%d", p.ID, p.Day)
	}
	return ""
}

func outcome(r engine.Result) string {
	switch {
	case r.Critical:
		return "critical"
	case r.Success:
		return "success"
	}
	return "failed"
}
