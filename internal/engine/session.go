package engine

import (
	"context"
	"fmt"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
)

// Session holds the lazily computed lookups for one reconciliation of one
// exercise: the diff since its checkpoint, its config index and record, its
// exercise files, and its position.
//
// Every value is computed at most once and only against the Track snapshot
// the session was created with, so the config resolver and the position
// calculator always see the same commit. A Session is created per exercise
// per run and discarded afterwards; it is never shared between goroutines.
type Session struct {
	src      content.Source
	track    *ir.Track
	exercise ir.Exercise
	rules    KindRules
	anchor   string

	diff     content.PathSet
	index    *int
	files    *ir.ExerciseFiles
	position *int
}

// NewSession creates a session reconciling exercise against track.
// The head commit is track.Commit.
func NewSession(src content.Source, track *ir.Track, exercise ir.Exercise, anchor string) (*Session, error) {
	rules, err := RulesFor(exercise.Kind)
	if err != nil {
		return nil, err
	}
	if anchor == "" {
		anchor = DefaultAnchorSlug
	}
	return &Session{
		src:      src,
		track:    track,
		exercise: exercise,
		rules:    rules,
		anchor:   anchor,
	}, nil
}

// Exercise returns the exercise as persisted when the session started.
func (s *Session) Exercise() ir.Exercise {
	return s.exercise
}

// Track returns the snapshot the session reconciles against.
func (s *Session) Track() *ir.Track {
	return s.track
}

// HeadCommit returns the commit the session reconciles against.
func (s *Session) HeadCommit() string {
	return s.track.Commit
}

// Index locates the exercise in its kind's list by UUID.
// Returns ErrEntityRemoved when the track no longer declares it.
func (s *Session) Index() (int, error) {
	if s.index != nil {
		return *s.index, nil
	}
	idx := -1
	for i, e := range s.rules.Siblings(s.track) {
		if e.UUID == s.exercise.UUID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, s.fail(ErrCodeEntityRemoved, fmt.Sprintf("not declared in track %s at %s", s.track.Slug, s.track.Commit), ErrEntityRemoved)
	}
	s.index = &idx
	return idx, nil
}

// Config returns the exercise's config record at the head commit.
func (s *Session) Config() (ir.ExerciseConfig, error) {
	idx, err := s.Index()
	if err != nil {
		return ir.ExerciseConfig{}, err
	}
	return s.rules.Siblings(s.track)[idx], nil
}

// Position returns the exercise's computed position at the head commit.
func (s *Session) Position() (int, error) {
	if s.position != nil {
		return *s.position, nil
	}
	cfg, err := s.Config()
	if err != nil {
		return 0, err
	}
	idx, _ := s.Index()
	pos := Position(cfg.Slug, idx, s.rules.PrecedingCount(s.track), s.anchor)
	s.position = &pos
	return pos, nil
}

// Files returns the exercise's own config and paths at the head commit.
func (s *Session) Files(ctx context.Context) (*ir.ExerciseFiles, error) {
	if s.files != nil {
		return s.files, nil
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	files, err := s.src.ReadExercise(ctx, s.track.Commit, s.rules.Kind, cfg.Slug)
	if err != nil {
		return nil, s.fail(ErrCodeSourceFailed, "read exercise files", err)
	}
	s.files = files
	return files, nil
}

// Diff returns the paths changed between the exercise's checkpoint and head.
func (s *Session) Diff(ctx context.Context) (content.PathSet, error) {
	if s.diff != nil {
		return s.diff, nil
	}
	diff, err := s.src.Diff(ctx, s.exercise.SyncedToGitSHA, s.track.Commit)
	if err != nil {
		return nil, s.fail(ErrCodeSourceFailed, "diff since checkpoint", err)
	}
	if diff == nil {
		diff = content.PathSet{}
	}
	s.diff = diff
	return diff, nil
}

// InDiff reports whether path changed since the checkpoint.
func (s *Session) InDiff(ctx context.Context, path string) (bool, error) {
	diff, err := s.Diff(ctx)
	if err != nil {
		return false, err
	}
	return diff.Contains(path), nil
}

// TrackConfigModified reports whether the track config changed since the checkpoint.
func (s *Session) TrackConfigModified(ctx context.Context) (bool, error) {
	return s.InDiff(ctx, ir.TrackConfigPath)
}

// PracticedSlugs returns the configured practiced-concept slugs for this kind.
func (s *Session) PracticedSlugs() ([]string, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	return s.rules.Practiced(cfg), nil
}

func (s *Session) fail(code ReconcileErrorCode, message string, err error) error {
	return newReconcileError(code, s.exercise.UUID, s.exercise.Slug, message, err)
}
