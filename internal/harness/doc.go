// Package harness runs progression scenarios against the engine.
//
// A scenario is a YAML file naming a sequence of engine operations (create,
// add_skill, advance_time, set_skills, award_attribute, recompute,
// progress, all_skills, clear, ingest) followed by assertions over the
// operation trace, the recorded progression events and the final character
// state.
//
// Every run is deterministic: the engine persists into a
// testutil.RecordingStore, wall time comes from a testutil.ManualClock that
// only moves on advance_time steps, and ids come from
// testutil.SequenceIDs. The same scenario therefore always produces the
// same trace and state, which is what golden snapshots compare.
//
// Example:
//
//	name: running_levels_up
//	description: Only levels gained after tracking starts pay attributes
//	setup:
//	  - action: create
//	    args: {name: Aru}
//	flow:
//	  - invoke: add_skill
//	    args: {name: Running, xp: 5}
//	  - invoke: add_skill
//	    args: {name: Running, xp: 10}
//	  - invoke: add_skill
//	    args: {name: Running, xp: 30}
//	    expect:
//	      case: ok
//	      result: {xp: 45, level: 2}
//	assertions:
//	  - type: final_state
//	    table: attributes
//	    where: {name: agility}
//	    expect: {xp: 1, level: 0}
package harness
