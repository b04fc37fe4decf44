// Package store provides SQLite-backed persistence for characters and their
// progression history.
//
// Two tables:
//   - characters: one row per character holding the canonical JSON document,
//     its state hash and a revision counter bumped on every save
//   - progression_events: append-only history written by the engine
//
// Ordering of history uses the logical seq column, never wall time, so
// histories read back identically regardless of clock skew. Queries that
// return events order by seq ASC, id ASC COLLATE BINARY.
//
// Each SaveCharacter runs in a single transaction: the document either
// fully lands with a new revision or the call returns an error.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Documents written by older versions (bare-number attributes, Russian
// attribute keys, partial skills) are repaired on load by model.Decode.
package store
