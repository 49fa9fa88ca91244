// Package engine resolves player actions into state changes.
//
// An Engine looks up the chosen action in a Registry keyed by phase and
// folded action name, checks that the action is affordable, takes it from
// the active phase's pool and rolls its outcome through the injected random
// source. Outcomes are applied through GameState mutators only; the engine
// holds no simulation state of its own.
//
// Resolution Flow:
//  1. Reject when the game is over, the phase pool is empty or the action
//     does not resolve. Nothing is mutated.
//  2. Check stamina. Rest actions are free; everything else is rejected
//     without mutation when stamina cannot cover the cost.
//  3. Consume the action and spend stamina.
//  4. Compute the success rate, then draw success and critical, always in
//     that order and always both, so a scripted roll sequence stays aligned
//     across outcomes.
//  5. Apply the base or critical reward tier on success, consolation
//     experience and technical debt on failure.
//  6. Record the action, apply the monotony penalty, publish
//     action-executed (and critical-success).
//
// Rejections are ordinary Results with a Reason; ExecuteAction never returns
// an error and never panics on player input.
//
// The engine never advances the day or flips the phase. Those transitions
// belong to the orchestrator.
package engine
