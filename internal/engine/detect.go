package engine

import (
	"context"
	"slices"

	"github.com/roach88/tracksync/internal/ir"
)

// Trigger names the change-detection check that fired.
type Trigger string

const (
	// TriggerNone means nothing relevant changed.
	TriggerNone Trigger = ""

	// TriggerTrackConfig means the track config changed and a track-level
	// field of this exercise drifted.
	TriggerTrackConfig Trigger = "track_config"

	// TriggerExerciseConfig means the exercise's own config changed and one
	// of its fields drifted.
	TriggerExerciseConfig Trigger = "exercise_config"

	// TriggerToolingFiles means a tooling file of the exercise changed.
	TriggerToolingFiles Trigger = "tooling_files"
)

// Detection is the result of change detection for one exercise.
type Detection struct {
	Trigger Trigger `json:"trigger,omitempty"`

	// Field is the first drifted field, or the first changed tooling path.
	Field string `json:"field,omitempty"`
}

// Changed reports whether the exercise needs a full reconciliation.
func (d Detection) Changed() bool {
	return d.Trigger != TriggerNone
}

// Detect decides whether the exercise needs updating.
//
// The three checks run cheapest first and stop at the first hit:
//  1. track config in the diff and a track-level field drifted
//  2. the exercise config in the diff and an exercise-level field drifted
//  3. any tooling file in the diff, with no value comparison
//
// Collections are compared as sorted sets, so reordering alone is not drift.
func Detect(ctx context.Context, s *Session) (Detection, error) {
	if d, err := detectTrackConfig(ctx, s); err != nil || d.Changed() {
		return d, err
	}
	if d, err := detectExerciseConfig(ctx, s); err != nil || d.Changed() {
		return d, err
	}
	return detectToolingFiles(ctx, s)
}

func detectTrackConfig(ctx context.Context, s *Session) (Detection, error) {
	modified, err := s.TrackConfigModified(ctx)
	if err != nil || !modified {
		return Detection{}, err
	}

	cfg, err := s.Config()
	if err != nil {
		return Detection{}, err
	}
	pos, err := s.Position()
	if err != nil {
		return Detection{}, err
	}
	practiced, err := s.PracticedSlugs()
	if err != nil {
		return Detection{}, err
	}

	ex := s.Exercise()
	switch {
	case pos != ex.Position:
		return drift(TriggerTrackConfig, "position"), nil
	case cfg.Slug != ex.Slug:
		return drift(TriggerTrackConfig, "slug"), nil
	case !sameTitle(ir.Presence(cfg.Name), ex.Title):
		return drift(TriggerTrackConfig, "title"), nil
	case ir.StatusOrDefault(cfg.Status) != ex.Status:
		return drift(TriggerTrackConfig, "status"), nil
	case cfg.Difficulty != ex.Difficulty:
		return drift(TriggerTrackConfig, "difficulty"), nil
	case !sameSet(cfg.Prerequisites, ex.PrerequisiteSlugs()):
		return drift(TriggerTrackConfig, "prerequisites"), nil
	case !sameSet(practiced, ex.PracticedConceptSlugs()):
		return drift(TriggerTrackConfig, "practiced_concepts"), nil
	}
	return Detection{}, nil
}

func detectExerciseConfig(ctx context.Context, s *Session) (Detection, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return Detection{}, err
	}
	modified, err := s.InDiff(ctx, files.ConfigPath)
	if err != nil || !modified {
		return Detection{}, err
	}

	ex := s.Exercise()
	switch {
	case files.Blurb != ex.Blurb:
		return drift(TriggerExerciseConfig, "blurb"), nil
	case files.IconName != ex.IconName:
		return drift(TriggerExerciseConfig, "icon_name"), nil
	case !sameSet(files.Authors, ex.Authors):
		return drift(TriggerExerciseConfig, "authors"), nil
	case !sameSet(files.Contributors, ex.Contributors):
		return drift(TriggerExerciseConfig, "contributors"), nil
	case files.HasTestRunner != ex.HasTestRunner:
		return drift(TriggerExerciseConfig, "has_test_runner"), nil
	}
	return Detection{}, nil
}

func detectToolingFiles(ctx context.Context, s *Session) (Detection, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return Detection{}, err
	}
	diff, err := s.Diff(ctx)
	if err != nil {
		return Detection{}, err
	}
	for _, p := range files.ToolingPaths {
		if diff.Contains(p) {
			return drift(TriggerToolingFiles, p), nil
		}
	}
	return Detection{}, nil
}

func drift(t Trigger, field string) Detection {
	return Detection{Trigger: t, Field: field}
}

// sameSet compares two string lists as sets: order and repeats are ignored.
// Nil and empty are equal. The store keeps each slug of a join table once,
// so a list configured with a repeat must still match what was written.
func sameSet(a, b []string) bool {
	return slices.Equal(uniqueSorted(a), uniqueSorted(b))
}

func uniqueSorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

func sameTitle(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
