// Package store provides a SQLite journal of display transitions.
//
// Every transition the engine emits can be appended with RecordTransition
// and read back, in recording order, with ListTransitions. The engine
// never reads the journal, so a restart begins from a fresh state.
//
// # Ordering
//
//   - Within a run, transitions are ordered by seq (the engine's logical
//     clock), never by the recorded wall time
//   - Each Open starts a new run ID (UUIDv7), so several runs can share a
//     database file without seq collisions
//
// # Database Configuration
//
//   - WAL mode: trace can read while run writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - Single connection: SQLite allows one writer
package store
