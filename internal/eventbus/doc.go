// Package eventbus implements the synchronous topic-based publish/subscribe
// hub that carries every state mutation of the simulation to its observers.
//
// DELIVERY MODEL:
//
// Emit dispatches to the current subscribers of a topic immediately, in
// subscription order, within the caller's stack frame. There is no queue
// and no back-pressure. Every subscriber of one emission receives the same
// Event value (and therefore the same Payload).
//
// A subscriber that panics is recovered and logged; the remaining
// subscribers of that emission still run. The handler list is copied before
// dispatch, so handlers may subscribe, unsubscribe or emit re-entrantly.
// Recursion depth of re-entrant emission is the caller's responsibility.
//
// Payload types are owned by the producing packages (state, engine,
// ceremony). Observers must treat payloads as read-only.
package eventbus
