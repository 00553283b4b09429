// Package store provides SQLite-backed storage for tracksync.
//
// The store holds:
//   - Exercises: the catalog records being reconciled, with ordered
//     prerequisite and practiced-concept join rows
//   - Concepts and users: related entities, looked up by UUID or username
//     and never created by the engine
//   - Site updates: one row per (exercise, kind) notification
//   - Sync runs: one row per whole-track run
//
// # Write Discipline
//
// UpdateExercise writes every synchronization field, the join rows, and the
// checkpoint in one transaction. A failure anywhere rolls the whole update
// back, so synced_to_git_sha never points past a commit whose update was not
// applied. AdvanceCheckpoint is a single-column UPDATE used when nothing else
// changed.
//
// # Deterministic Query Results
//
// Ordered relations are read back with ORDER BY ord ASC. Exercise listings
// use ORDER BY position ASC, id ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
