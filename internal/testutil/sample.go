package testutil

import (
	"fmt"

	"github.com/roach88/tracksync/internal/ir"
)

// Sample track identifiers.
const (
	SampleTrack = "ruby"

	ConceptBasicsUUID       = "c0000000-0000-0000-0000-000000000001"
	ConceptStringsUUID      = "c0000000-0000-0000-0000-000000000002"
	ConceptConditionalsUUID = "c0000000-0000-0000-0000-000000000003"
	ConceptNumbersUUID      = "c0000000-0000-0000-0000-000000000004"

	LasagnaUUID       = "e0000000-0000-0000-0000-000000000001"
	AmusementParkUUID = "e0000000-0000-0000-0000-000000000002"
	HelloWorldUUID    = "e0000000-0000-0000-0000-000000000003"
	TwoFerUUID        = "e0000000-0000-0000-0000-000000000004"
	LeapUUID          = "e0000000-0000-0000-0000-000000000005"
	RaindropsUUID     = "e0000000-0000-0000-0000-000000000006"
)

// SampleTrackFixture returns a small track: two concept exercises, four
// practice exercises (hello-world first) and four concepts.
//
// Expected positions with the default anchor:
//
//	hello-world 0, lasagna 1, amusement-park 2, two-fer 4, leap 5, raindrops 6
func SampleTrackFixture() TrackFixture {
	return TrackFixture{
		Slug: SampleTrack,
		Exercises: ExercisesFixture{
			Concept: []ir.ExerciseConfig{
				{UUID: LasagnaUUID, Slug: "lasagna", Name: "Lasagna", Difficulty: 1, Concepts: []string{"basics"}},
				{UUID: AmusementParkUUID, Slug: "amusement-park", Name: "Amusement Park", Difficulty: 2,
					Prerequisites: []string{"basics"}, Concepts: []string{"strings"}},
			},
			Practice: []ir.ExerciseConfig{
				{UUID: HelloWorldUUID, Slug: "hello-world", Name: "Hello World", Difficulty: 1},
				{UUID: TwoFerUUID, Slug: "two-fer", Name: "Two Fer", Difficulty: 1,
					Prerequisites: []string{"strings", "basics"}, Practices: []string{"strings", "conditionals"}},
				{UUID: LeapUUID, Slug: "leap", Name: "Leap", Difficulty: 2,
					Prerequisites: []string{"conditionals"}, Practices: []string{"conditionals", "numbers"}},
				{UUID: RaindropsUUID, Slug: "raindrops", Name: "Raindrops", Status: "beta", Difficulty: 3,
					Practices: []string{"numbers"}},
			},
		},
		Concepts: []ir.ConceptConfig{
			{UUID: ConceptBasicsUUID, Slug: "basics", Name: "Basics"},
			{UUID: ConceptStringsUUID, Slug: "strings", Name: "Strings"},
			{UUID: ConceptConditionalsUUID, Slug: "conditionals", Name: "Conditionals"},
			{UUID: ConceptNumbersUUID, Slug: "numbers", Name: "Numbers"},
		},
	}
}

// SampleMeta returns the .meta/config.json content used for every sample exercise.
func SampleMeta(slug string) ExerciseMeta {
	return ExerciseMeta{
		Blurb:        fmt.Sprintf("Learn with %s.", slug),
		Authors:      []string{"alice"},
		Contributors: []string{"bob", "carol"},
		Files: MetaFiles{
			Solution: []string{slug + ".rb"},
			Test:     []string{slug + "_test.rb"},
			Example:  []string{".meta/example.rb"},
		},
	}
}

// SampleTree builds the repository tree for a track fixture, giving every
// exercise SampleMeta content.
func SampleTree(track TrackFixture) (Tree, error) {
	tree := Tree{}
	if err := tree.SetTrack(track); err != nil {
		return nil, err
	}
	for _, e := range track.Exercises.Concept {
		if err := tree.SetExercise(ir.KindConcept, e.Slug, SampleMeta(e.Slug)); err != nil {
			return nil, err
		}
	}
	for _, e := range track.Exercises.Practice {
		if err := tree.SetExercise(ir.KindPractice, e.Slug, SampleMeta(e.Slug)); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
