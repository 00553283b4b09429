package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/testutil"
)

// writeCommits materializes the scenario's commits into repo.
func writeCommits(repo *testutil.Repo, commits []Commit) error {
	track := testutil.SampleTrackFixture()
	tree, err := testutil.SampleTree(track)
	if err != nil {
		return err
	}

	prev := ""
	for _, c := range commits {
		tree = tree.Clone()
		if err := applyCommit(&track, tree, c); err != nil {
			return fmt.Errorf("commit %s: %w", c.SHA, err)
		}
		if err := tree.SetTrack(track); err != nil {
			return fmt.Errorf("commit %s: %w", c.SHA, err)
		}
		if err := repo.Commit(c.SHA, tree); err != nil {
			return err
		}
		if c.Patch != "" {
			if err := repo.Patch(prev, c.SHA, c.Patch); err != nil {
				return err
			}
		}
		prev = c.SHA
	}
	return nil
}

// applyCommit edits track and tree in place.
func applyCommit(track *testutil.TrackFixture, tree testutil.Tree, c Commit) error {
	for _, edit := range c.Exercises {
		if err := applyEdit(track, tree, edit); err != nil {
			return err
		}
	}
	if len(c.Order) > 0 {
		ordered, err := reorder(track.Exercises.Practice, c.Order)
		if err != nil {
			return err
		}
		track.Exercises.Practice = ordered
	}
	for path, content := range c.Files {
		tree[path] = content
	}
	for _, path := range c.Delete {
		if _, ok := tree[path]; !ok {
			return fmt.Errorf("delete %s: no such file", path)
		}
		delete(tree, path)
	}
	return nil
}

func applyEdit(track *testutil.TrackFixture, tree testutil.Tree, edit ExerciseEdit) error {
	kind, list := ir.KindConcept, &track.Exercises.Concept
	i := slices.IndexFunc(*list, func(e ir.ExerciseConfig) bool { return e.Slug == edit.Slug })
	if i < 0 {
		kind, list = ir.KindPractice, &track.Exercises.Practice
		i = slices.IndexFunc(*list, func(e ir.ExerciseConfig) bool { return e.Slug == edit.Slug })
	}
	if i < 0 {
		return fmt.Errorf("no exercise %q", edit.Slug)
	}

	if edit.Remove {
		*list = slices.Delete(*list, i, i+1)
		return nil
	}

	cfg := &(*list)[i]
	if edit.Name != nil {
		cfg.Name = *edit.Name
	}
	if edit.Status != nil {
		cfg.Status = *edit.Status
	}
	if edit.Difficulty != nil {
		cfg.Difficulty = *edit.Difficulty
	}
	if edit.Prerequisites != nil {
		cfg.Prerequisites = *edit.Prerequisites
	}
	if edit.Practices != nil {
		cfg.Practices = *edit.Practices
	}
	if edit.Concepts != nil {
		cfg.Concepts = *edit.Concepts
	}
	if edit.Meta != nil {
		if err := tree.SetExercise(kind, edit.Slug, *edit.Meta); err != nil {
			return err
		}
	}
	return nil
}

func reorder(list []ir.ExerciseConfig, slugs []string) ([]ir.ExerciseConfig, error) {
	if len(slugs) != len(list) {
		return nil, fmt.Errorf("order lists %d exercises, track has %d", len(slugs), len(list))
	}
	out := make([]ir.ExerciseConfig, 0, len(list))
	seen := map[string]bool{}
	for _, slug := range slugs {
		if seen[slug] {
			return nil, fmt.Errorf("order: duplicate exercise %q", slug)
		}
		seen[slug] = true
		i := slices.IndexFunc(list, func(e ir.ExerciseConfig) bool { return e.Slug == slug })
		if i < 0 {
			return nil, fmt.Errorf("order: no practice exercise %q", slug)
		}
		out = append(out, list[i])
	}
	return out, nil
}
