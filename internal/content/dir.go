package content

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/tracksync/internal/ir"
)

// DirSource is a Source over a materialized snapshot layout on disk.
// See the package documentation for the layout.
//
// Commits are immutable, so diffs are cached per (from, to) pair for the
// lifetime of the source. Concurrent requests for the same pair share one
// computation.
//
// Thread-safety: DirSource is safe for concurrent use.
type DirSource struct {
	root string

	flight singleflight.Group
	mu     sync.Mutex
	diffs  map[string]PathSet
}

// NewDirSource returns a DirSource rooted at root.
// The root must contain a HEAD file and a commits directory.
func NewDirSource(root string) (*DirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open content repository: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open content repository: not a directory: %s", root)
	}
	if _, err := os.Stat(filepath.Join(root, "commits")); err != nil {
		return nil, fmt.Errorf("open content repository: %w", err)
	}
	return &DirSource{root: root, diffs: map[string]PathSet{}}, nil
}

// Root returns the repository root directory.
func (s *DirSource) Root() string {
	return s.root
}

// HeadCommit reads the SHA stored in <root>/HEAD.
func (s *DirSource) HeadCommit(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.root, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	sha := strings.TrimSpace(string(data))
	if sha == "" {
		return "", errors.New("read HEAD: empty")
	}
	if _, err := s.commitDir(sha); err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	return sha, nil
}

// Diff returns the paths changed between from and to.
//
// A stored patch for the pair is preferred. Without one, both trees are
// walked and files whose content digests differ (or that exist on one side
// only) are reported. The returned set is shared between callers and must
// not be modified. Errors are not cached.
func (s *DirSource) Diff(ctx context.Context, from, to string) (PathSet, error) {
	if from == to {
		return PathSet{}, nil
	}

	key := from + ".." + to
	s.mu.Lock()
	cached, ok := s.diffs[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		paths, err := s.diff(ctx, from, to)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.diffs[key] = paths
		s.mu.Unlock()
		return paths, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(PathSet), nil
}

func (s *DirSource) diff(ctx context.Context, from, to string) (PathSet, error) {
	toDir, err := s.commitDir(to)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
	}

	if from != "" {
		patch, err := os.ReadFile(filepath.Join(s.root, "diffs", from+".."+to+".patch"))
		switch {
		case err == nil:
			return ParsePatch(patch)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
		}
	}

	toDigests, err := treeDigests(ctx, toDir)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
	}

	fromDigests := map[string][sha256.Size]byte{}
	if from != "" {
		fromDir, err := s.commitDir(from)
		if err != nil {
			return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
		}
		fromDigests, err = treeDigests(ctx, fromDir)
		if err != nil {
			return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
		}
	}

	changed := PathSet{}
	for p, d := range toDigests {
		if old, ok := fromDigests[p]; !ok || old != d {
			changed.Add(p)
		}
	}
	for p := range fromDigests {
		if _, ok := toDigests[p]; !ok {
			changed.Add(p)
		}
	}
	return changed, nil
}

// ReadTrack decodes config.json at commit.
func (s *DirSource) ReadTrack(ctx context.Context, commit string) (*ir.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.commitDir(commit)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ir.TrackConfigPath))
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	track, err := parseTrack(commit, data)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	return track, nil
}

// ReadExercise decodes an exercise's .meta/config.json at commit.
func (s *DirSource) ReadExercise(ctx context.Context, commit string, kind ir.ExerciseKind, slug string) (*ir.ExerciseFiles, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("read exercise %s: unknown kind %q", slug, kind)
	}
	if !validName(slug) {
		return nil, fmt.Errorf("read exercise: invalid slug %q", slug)
	}
	dir, err := s.commitDir(commit)
	if err != nil {
		return nil, fmt.Errorf("read exercise %s: %w", slug, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ir.ExerciseConfigPath(kind, slug))))
	if err != nil {
		return nil, fmt.Errorf("read exercise %s: %w", slug, err)
	}
	files, err := parseExercise(kind, slug, data)
	if err != nil {
		return nil, fmt.Errorf("read exercise %s: %w", slug, err)
	}
	return files, nil
}

// commitDir resolves the tree directory of a commit.
func (s *DirSource) commitDir(sha string) (string, error) {
	if !validName(sha) {
		return "", fmt.Errorf("%w: invalid sha %q", ErrCommitNotFound, sha)
	}
	dir := filepath.Join(s.root, "commits", sha)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, sha)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, sha)
	}
	return dir, nil
}

// validName rejects empty names and anything that could escape its directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// treeDigests maps every regular file under dir to its SHA-256 digest,
// keyed by slash-separated path relative to dir.
func treeDigests(ctx context.Context, dir string) (map[string][sha256.Size]byte, error) {
	digests := map[string][sha256.Size]byte{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		digests[filepath.ToSlash(rel)] = sha256.Sum256(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return digests, nil
}
