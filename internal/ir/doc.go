// Package ir provides the shared domain types for tracksync.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import ir; ir imports nothing internal, which keeps
// it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Exercises and concepts are identified by UUID, never by slug
//   - Config records (ExerciseConfig, ConceptConfig, Track) are read-only snapshots
//     produced per commit by a content source and never mutated after loading
//   - All JSON tags use snake_case
package ir
