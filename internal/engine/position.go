package engine

import (
	"fmt"

	"github.com/roach88/tracksync/internal/ir"
)

// DefaultAnchorSlug is the exercise that always sits at position 0.
const DefaultAnchorSlug = "hello-world"

// Position computes an exercise's ordinal position within its track.
//
// The anchor exercise is always first. Every other exercise is placed after
// the anchor and after all exercises of the preceding kind:
//
//	position = index + 1 + precedingCount
func Position(slug string, index, precedingCount int, anchor string) int {
	if slug == anchor {
		return 0
	}
	return index + 1 + precedingCount
}

// KindRules holds the per-kind behavior the engine needs: which track list
// the exercise lives in, how many exercises precede that list, and which
// config field names the concepts it practices.
type KindRules struct {
	Kind ir.ExerciseKind

	// Siblings returns the ordered exercise list of this kind.
	Siblings func(t *ir.Track) []ir.ExerciseConfig

	// PrecedingCount returns how many exercises of other kinds are ordered
	// before this kind's list.
	PrecedingCount func(t *ir.Track) int

	// Practiced returns the concept slugs stored as practiced concepts.
	Practiced func(c ir.ExerciseConfig) []string
}

// RulesFor returns the KindRules for an exercise kind.
func RulesFor(kind ir.ExerciseKind) (KindRules, error) {
	switch kind {
	case ir.KindConcept:
		return KindRules{
			Kind:           ir.KindConcept,
			Siblings:       func(t *ir.Track) []ir.ExerciseConfig { return t.ConceptExercises },
			PrecedingCount: func(*ir.Track) int { return 0 },
			Practiced:      func(c ir.ExerciseConfig) []string { return c.Concepts },
		}, nil
	case ir.KindPractice:
		return KindRules{
			Kind:           ir.KindPractice,
			Siblings:       func(t *ir.Track) []ir.ExerciseConfig { return t.PracticeExercises },
			PrecedingCount: func(t *ir.Track) int { return len(t.ConceptExercises) },
			Practiced:      func(c ir.ExerciseConfig) []string { return c.Practices },
		}, nil
	default:
		return KindRules{}, fmt.Errorf("unknown exercise kind %q", kind)
	}
}
