package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/roach88/tracksync/internal/ir"
)

// TrackFixture is the content of a track config.json.
type TrackFixture struct {
	Slug      string             `json:"slug" yaml:"slug"`
	Exercises ExercisesFixture   `json:"exercises" yaml:"exercises"`
	Concepts  []ir.ConceptConfig `json:"concepts" yaml:"concepts"`
}

// ExercisesFixture holds the two ordered exercise lists of a track config.
type ExercisesFixture struct {
	Concept  []ir.ExerciseConfig `json:"concept" yaml:"concept"`
	Practice []ir.ExerciseConfig `json:"practice" yaml:"practice"`
}

// ExerciseMeta is the content of an exercise's .meta/config.json.
type ExerciseMeta struct {
	Blurb        string    `json:"blurb,omitempty" yaml:"blurb,omitempty"`
	Icon         string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Authors      []string  `json:"authors" yaml:"authors"`
	Contributors []string  `json:"contributors" yaml:"contributors"`
	TestRunner   *bool     `json:"test_runner,omitempty" yaml:"test_runner,omitempty"`
	Files        MetaFiles `json:"files" yaml:"files"`
}

// MetaFiles lists an exercise's files by role, relative to its directory.
type MetaFiles struct {
	Solution    []string `json:"solution,omitempty" yaml:"solution,omitempty"`
	Test        []string `json:"test,omitempty" yaml:"test,omitempty"`
	Example     []string `json:"example,omitempty" yaml:"example,omitempty"`
	Exemplar    []string `json:"exemplar,omitempty" yaml:"exemplar,omitempty"`
	Editor      []string `json:"editor,omitempty" yaml:"editor,omitempty"`
	Invalidator []string `json:"invalidator,omitempty" yaml:"invalidator,omitempty"`
}

// Tree is a repository tree: slash-separated path to file content.
type Tree map[string]string

// SetTrack writes config.json.
func (t Tree) SetTrack(track TrackFixture) error {
	data, err := json.MarshalIndent(track, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal track: %w", err)
	}
	t[ir.TrackConfigPath] = string(data) + "\n"
	return nil
}

// SetExercise writes an exercise's .meta/config.json plus a placeholder for
// every listed file that the tree does not already contain.
func (t Tree) SetExercise(kind ir.ExerciseKind, slug string, meta ExerciseMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal exercise %s: %w", slug, err)
	}
	dir := ir.ExerciseDir(kind, slug)
	t[ir.ExerciseConfigPath(kind, slug)] = string(data) + "\n"

	for _, group := range [][]string{
		meta.Files.Solution, meta.Files.Test, meta.Files.Example,
		meta.Files.Exemplar, meta.Files.Editor, meta.Files.Invalidator,
	} {
		for _, f := range group {
			p := path.Join(dir, f)
			if _, ok := t[p]; !ok {
				t[p] = "# " + f + "\n"
			}
		}
	}
	return nil
}

// Clone returns a copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Repo writes content repository fixtures in the content.DirSource layout.
type Repo struct {
	Root string
}

// NewRepo creates an empty repository layout under root.
func NewRepo(root string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Join(root, "commits"), 0o755); err != nil {
		return nil, fmt.Errorf("create repo: %w", err)
	}
	return &Repo{Root: root}, nil
}

// Commit writes tree as the content of commit sha.
func (r *Repo) Commit(sha string, tree Tree) error {
	dir := filepath.Join(r.Root, "commits", sha)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("commit %s: %w", sha, err)
	}

	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("commit %s: %w", sha, err)
		}
		if err := os.WriteFile(full, []byte(tree[p]), 0o644); err != nil {
			return fmt.Errorf("commit %s: %w", sha, err)
		}
	}
	return nil
}

// SetHead points HEAD at sha.
func (r *Repo) SetHead(sha string) error {
	if err := os.WriteFile(filepath.Join(r.Root, "HEAD"), []byte(sha+"\n"), 0o644); err != nil {
		return fmt.Errorf("set head: %w", err)
	}
	return nil
}

// CommitHead writes tree as commit sha and points HEAD at it.
func (r *Repo) CommitHead(sha string, tree Tree) error {
	if err := r.Commit(sha, tree); err != nil {
		return err
	}
	return r.SetHead(sha)
}

// Patch stores a unified diff for the commit pair.
func (r *Repo) Patch(from, to, patch string) error {
	dir := filepath.Join(r.Root, "diffs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, from+".."+to+".patch"), []byte(patch), 0o644); err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	return nil
}
