// Package engine implements the progression coordinator.
//
// The engine turns skill mentions into skill XP and levels, pays attribute
// XP for skill level-ups, rebuilds the skill graph and derives attribute and
// global levels. Every mutating operation ends with exactly one save
// through the Store and, when an EventLog is configured, one progression
// event.
//
// EXECUTION MODEL:
//
// Operations are synchronous and run to completion; the engine starts no
// goroutines. The caller owns the *model.Character it passes in and the
// engine mutates it in place. Two independently loaded copies of the same
// character are not merged: last write wins at the store.
//
// A progression pass is:
//  1. bridge: award attribute XP for the changed skill, or for every skill
//  2. graph: rebuild the skill graph from the current skills
//  3. aggregate: recompute attribute levels, then the global level
//  4. save
//
// A rules-only pass (ApplyProgressionRules) runs steps 3 and 4.
//
// FAILURE MODEL:
//
// A nil character or an unusable skill name is logged at warn level and the
// operation becomes a no-op returning a nil error. Store failures are
// returned wrapped. Event log failures are logged and never fail the
// operation.
package engine
