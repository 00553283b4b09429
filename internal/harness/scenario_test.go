package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/testutil"
)

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "track_edits.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "track_edits", scenario.Name)
	require.Len(t, scenario.Commits, 2)
	c2 := scenario.Commits[1]
	assert.Equal(t, []string{"hello-world", "leap", "two-fer", "raindrops"}, c2.Order)
	require.Len(t, c2.Exercises, 2)
	require.NotNil(t, c2.Exercises[0].Name)
	assert.Equal(t, "Leap Year", *c2.Exercises[0].Name)
	require.NotNil(t, c2.Exercises[1].Meta)
	assert.Equal(t, "wave", c2.Exercises[1].Meta.Icon)
	require.NotNil(t, scenario.Steps[3].Expect)
	assert.Equal(t, 4, *scenario.Steps[3].Expect.Reconciled)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: typo
description: misspelled key
commits: [{sha: c1}]
step:
  - action: sync
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\ncommits: [{sha: c1}]\nsteps: [{action: sync}]",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\ncommits: [{sha: c1}]\nsteps: [{action: sync}]",
			want: "description is required",
		},
		{
			name: "no commits",
			yaml: "name: n\ndescription: d\nsteps: [{action: sync}]",
			want: "commits list is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]",
			want: "steps list is required",
		},
		{
			name: "duplicate sha",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}, {sha: c1}]\nsteps: [{action: sync}]",
			want: `duplicate sha "c1"`,
		},
		{
			name: "patch on first commit",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1, patch: x}]\nsteps: [{action: sync}]",
			want: "patch requires a previous commit",
		},
		{
			name: "edit without slug",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1, exercises: [{remove: true}]}]\nsteps: [{action: sync}]",
			want: "commits[0].exercises[0]: slug is required",
		},
		{
			name: "unknown action",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: deploy}]",
			want: `unknown action "deploy"`,
		},
		{
			name: "unknown head",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: sync, head: c9}]",
			want: `unknown head "c9"`,
		},
		{
			name: "seed with expect",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: seed, expect: {failed: 0}}]",
			want: "expect is not supported for seed",
		},
		{
			name: "unknown outcome",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: sync, expect: {outcomes: {leap: done}}}]",
			want: `unknown outcome "done"`,
		},
		{
			name: "unknown assertion type",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: sync}]\nassertions: [{type: trace, expect: {a: 1}}]",
			want: `unknown assertion type "trace"`,
		},
		{
			name: "exercise assertion without slug",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: sync}]\nassertions: [{type: exercise, expect: {a: 1}}]",
			want: "exercise is required",
		},
		{
			name: "assertion without expect",
			yaml: "name: n\ndescription: d\ncommits: [{sha: c1}]\nsteps: [{action: sync}]\nassertions: [{type: sync_run, run: run-1}]",
			want: "expect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyCommit(t *testing.T) {
	track := testutil.SampleTrackFixture()
	tree, err := testutil.SampleTree(track)
	require.NoError(t, err)

	name, difficulty := "Leap Year", 5
	prereqs := []string{"numbers"}
	err = applyCommit(&track, tree, Commit{
		SHA: "c2",
		Exercises: []ExerciseEdit{
			{Slug: "leap", Name: &name, Difficulty: &difficulty, Prerequisites: &prereqs},
			{Slug: "lasagna", Remove: true},
		},
		Order:  []string{"raindrops", "leap", "two-fer", "hello-world"},
		Files:  map[string]string{"README.md": "# ruby\n"},
		Delete: []string{"exercises/practice/leap/leap_test.rb"},
	})
	require.NoError(t, err)

	require.Len(t, track.Exercises.Concept, 1)
	assert.Equal(t, "amusement-park", track.Exercises.Concept[0].Slug)

	practice := track.Exercises.Practice
	require.Len(t, practice, 4)
	assert.Equal(t, "raindrops", practice[0].Slug)
	assert.Equal(t, "leap", practice[1].Slug)
	assert.Equal(t, "Leap Year", practice[1].Name)
	assert.Equal(t, 5, practice[1].Difficulty)
	assert.Equal(t, []string{"numbers"}, practice[1].Prerequisites)

	assert.Equal(t, "# ruby\n", tree["README.md"])
	assert.NotContains(t, tree, "exercises/practice/leap/leap_test.rb")
	assert.Contains(t, tree, ir.ExerciseConfigPath(ir.KindConcept, "lasagna"), "removed exercises keep their files")
}

func TestApplyCommit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		commit Commit
		want   string
	}{
		{"unknown exercise", Commit{Exercises: []ExerciseEdit{{Slug: "nope"}}}, `no exercise "nope"`},
		{"short order", Commit{Order: []string{"leap"}}, "order lists 1 exercises, track has 4"},
		{"unknown in order", Commit{Order: []string{"leap", "two-fer", "raindrops", "lasagna"}}, `no practice exercise "lasagna"`},
		{"duplicate in order", Commit{Order: []string{"leap", "leap", "raindrops", "two-fer"}}, `duplicate exercise "leap"`},
		{"delete missing file", Commit{Delete: []string{"nope.txt"}}, "delete nope.txt: no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := testutil.SampleTrackFixture()
			tree, err := testutil.SampleTree(track)
			require.NoError(t, err)

			err = applyCommit(&track, tree, tt.commit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
