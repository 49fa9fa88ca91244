// Package ceremony orchestrates the day cycle on top of the simulation
// core.
//
// A Manager walks through the stages
//
//	IDLE -> MORNING -> ACTION -> NIGHT -> (ProceedToNextDay) -> MORNING
//
// and ENDED once the run is won or lost. It observes the action engine only
// through action-executed events: it counts the day's actions and failures,
// offers a pivot when one action type keeps failing, and once the day's
// pool is exhausted schedules the switch to night after the presentation
// delay.
//
// Deferred work is queued, not run on a timer goroutine. The caller drives
// it with RunPending (the CLI sleeps until NextDue first), so all state
// mutation stays on the caller's goroutine.
//
// ProceedToNextDay is the only path through which the Manager advances the
// day.
package ceremony
