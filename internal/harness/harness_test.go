package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)
		t.Run(scenario.Name, func(t *testing.T) {
			result := RunWithGolden(t, scenario)
			assert.True(t, result.Pass)
		})
	}
}

func TestGoldenPath_MatchesFixtureDir(t *testing.T) {
	assert.Equal(t,
		filepath.Join("testdata", "golden", "first_sync.golden"),
		GoldenPath(filepath.Join("testdata", "first_sync.yaml")))
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong
description: expectations that do not hold
commits:
  - sha: c1
steps:
  - action: seed
  - action: sync
    expect:
      reconciled: 5
      outcomes: { hello-world: checkpoint_only, missing: reconciled }
      details: { leap: "track_config:title" }
assertions:
  - type: exercise
    exercise: leap
    expect: { title: Leap Year }
  - type: exercise
    exercise: nope
    expect: { title: x }
  - type: sync_run
    run: run-9
    expect: { reconciled: 1 }
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)

	all := strings.Join(result.Errors, "\n")
	assert.Contains(t, all, "expected reconciled=5, got 6")
	assert.Contains(t, all, "expected hello-world to be checkpoint_only, got reconciled")
	assert.Contains(t, all, "expected outcome for missing, not in report")
	assert.Contains(t, all, `expected leap detail "track_config:title", got "track_config:difficulty"`)
	assert.Contains(t, all, `field "title" = Leap Year`)
	assert.Contains(t, all, "exercise nope")
	assert.Contains(t, all, "sync run to exist")
}

func TestRun_WithoutSeedReportsNothing(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "no seed step",
		Commits:     []Commit{{SHA: "c1"}},
		Steps:       []Step{{Action: ActionSync}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	require.Len(t, result.Reports, 1)
	assert.Empty(t, result.Reports[0].Entries)
	assert.Equal(t, "== step 1: sync @c1\n"+
		"run run-1 track=ruby head=c1 forced=false\n"+
		"summary: checkpoint_only=0 reconciled=0 failed=0\n"+
		"== state\n", result.Output)
}

func TestRun_InvalidCommitEdit(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Description: "edits an unknown exercise",
		Commits:     []Commit{{SHA: "c1", Exercises: []ExerciseEdit{{Slug: "bob", Remove: true}}}},
		Steps:       []Step{{Action: ActionSeed}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no exercise "bob"`)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "track_edits.yaml"))
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.Equal(t, first.Output, second.Output)
}
