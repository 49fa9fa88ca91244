// Package harness runs scripted sprintchef days as repeatable scenarios.
//
// A scenario wires a fresh event bus, game state, action engine and
// ceremony manager, replays a list of steps against them and records every
// event except state-changed into a trace. Step expectations, trace
// assertions and golden files then pin the behaviour down.
//
// # Scenario Format
//
//	name: quiet_day
//	description: "Two failures, a declined pivot, rest, night, next day"
//	preset: default
//	rolls: [0.99]
//	config:
//	  random_events: { chance: 0 }
//	steps:
//	  - do: start
//	  - do: focus
//	    arg: quality
//	  - do: action
//	    arg: prep
//	    expect: { success: false, remaining: 2 }
//	  - do: pending
//	    arg: "1200"
//	    expect: { stage: night }
//	assertions:
//	  - type: trace_count
//	    topic: pivot-offered
//	    count: 1
//	  - type: final_state
//	    expect: { day: 2, stage: morning, experience.knife: 10 }
//
// # Steps
//
//   - start: CeremonyManager.StartNewDay
//   - focus: SelectDailyFocus(arg); "none" skips the focus
//   - action: ExecuteAction(arg)
//   - night: EnterNight without waiting for the presentation delay
//   - pending: advance the fake clock by arg milliseconds, run due tasks
//   - proceed: ProceedToNextDay
//   - advance: GameState.AdvanceDay, bypassing the ceremony
//   - pivot_accept, pivot_decline
//
// Due deferred tasks are run after every step, so a presentation delay of
// 0 enters the night as soon as the day pool is empty.
//
// # Assertion Types
//
//   - trace_contains: an event of topic whose summary contains match
//   - trace_order: topics appear in the given order
//   - trace_count: topic appears exactly count times
//   - final_state: subset match on the final snapshot plus stage and outcome
//
// # Deterministic Testing
//
// Rolls, when given, are cycled in order for every random draw; otherwise
// a PCG source seeded with seed is used. Wall time comes from a fake clock
// fixed at testutil.Epoch, so golden traces are identical across runs.
package harness
