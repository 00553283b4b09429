package content

import (
	"context"
	"errors"
	"sort"

	"github.com/roach88/tracksync/internal/ir"
)

// ErrCommitNotFound is returned when a commit is not present in the source.
var ErrCommitNotFound = errors.New("commit not found")

// Source is the content repository adapter consumed by the engine.
//
// Implementations must be safe for concurrent use: a sync run calls Diff and
// ReadExercise from several workers at once.
type Source interface {
	// HeadCommit returns the SHA of the current head commit.
	HeadCommit(ctx context.Context) (string, error)

	// Diff returns the repository-relative paths changed between two commits.
	// An empty from means "no prior commit": every path at to is changed.
	Diff(ctx context.Context, from, to string) (PathSet, error)

	// ReadTrack returns the track config snapshot at a commit.
	ReadTrack(ctx context.Context, commit string) (*ir.Track, error)

	// ReadExercise returns an exercise's own config and file paths at a commit.
	ReadExercise(ctx context.Context, commit string, kind ir.ExerciseKind, slug string) (*ir.ExerciseFiles, error)
}

// PathSet is a set of repository-relative, slash-separated paths.
type PathSet map[string]struct{}

// NewPathSet builds a PathSet from paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts a path.
func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

// Contains reports whether p is in the set.
func (s PathSet) Contains(p string) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the paths in lexical order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
