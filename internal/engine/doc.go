// Package engine implements the tracksync change-detection and
// reconciliation engine.
//
// The engine keeps each persisted exercise consistent with the track config
// at the content repository's head commit, writing as little as possible.
//
// ARCHITECTURE:
//
// Per-Exercise Session:
// A Session memoizes everything one reconciliation looks up: the diff since
// the exercise's checkpoint, its config index and record, its own files and
// its position. All of it is resolved against one Track snapshot, and the
// session is discarded when the reconciliation ends.
//
// Reconciliation Flow:
//  1. Detect evaluates three triggers, cheapest first (track config drift,
//     exercise config drift, tooling files touched)
//  2. Not forced and nothing changed: only synced_to_git_sha is advanced
//  3. Forced or changed: every field, the ordered concept references and the
//     checkpoint are written in one transaction, then author sync,
//     contributor sync and the content-updated notification run in order
//
// Reconcile is generic over a Strategy so other entity kinds can reuse the
// two-path flow; ExerciseStrategy serves both concept and practice exercises
// through KindRules.
//
// CRITICAL PATTERNS:
//
// Checkpoint Safety:
// synced_to_git_sha only moves in the same transaction as the update it
// records, or alone when nothing needed updating.
//
// Dangling References:
// Concept slugs that cannot be resolved are dropped, never fatal.
//
// Isolation:
// Runner reconciles exercises in parallel with bounded workers; one failure
// never stops its siblings.
package engine
