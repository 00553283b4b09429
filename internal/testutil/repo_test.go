package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
)

func TestSampleTree_ReadsBackThroughDirSource(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	repo, err := NewRepo(root)
	require.NoError(t, err)
	tree, err := SampleTree(SampleTrackFixture())
	require.NoError(t, err)
	require.NoError(t, repo.CommitHead("c1", tree))

	src, err := content.NewDirSource(root)
	require.NoError(t, err)

	head, err := src.HeadCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", head)

	track, err := src.ReadTrack(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, SampleTrack, track.Slug)
	assert.Len(t, track.ConceptExercises, 2)
	assert.Len(t, track.PracticeExercises, 4)
	assert.Len(t, track.Concepts, 4)

	files, err := src.ReadExercise(ctx, head, ir.KindPractice, "leap")
	require.NoError(t, err)
	assert.Equal(t, "Learn with leap.", files.Blurb)
	assert.Equal(t, "leap", files.IconName)
	assert.Equal(t, []string{"alice"}, files.Authors)
	assert.True(t, files.HasTestRunner)
	assert.Contains(t, files.ToolingPaths, "exercises/practice/leap/leap_test.rb")
}

func TestTree_SetExerciseKeepsExistingFiles(t *testing.T) {
	tree := Tree{"exercises/practice/leap/leap.rb": "def leap?; end\n"}
	require.NoError(t, tree.SetExercise(ir.KindPractice, "leap", SampleMeta("leap")))

	assert.Equal(t, "def leap?; end\n", tree["exercises/practice/leap/leap.rb"])
	assert.Contains(t, tree, "exercises/practice/leap/.meta/config.json")
	assert.Contains(t, tree, "exercises/practice/leap/.meta/example.rb")
}

func TestTree_CloneIsIndependent(t *testing.T) {
	tree := Tree{"a": "1"}
	clone := tree.Clone()
	clone["a"] = "2"
	assert.Equal(t, "1", tree["a"])
}

func TestRepo_Patch(t *testing.T) {
	root := t.TempDir()
	repo, err := NewRepo(root)
	require.NoError(t, err)

	require.NoError(t, repo.Patch("c1", "c2", "diff"))

	data, err := os.ReadFile(filepath.Join(root, "diffs", "c1..c2.patch"))
	require.NoError(t, err)
	assert.Equal(t, "diff", string(data))
}
