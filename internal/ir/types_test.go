package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	title := "Leap"
	ex := Exercise{
		UUID:           "u-1",
		Title:          &title,
		IconName:       "leap",
		SyncedToGitSHA: "abc",
		HasTestRunner:  true,
	}
	data, err := json.Marshal(ex)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"icon_name"`)
	assert.Contains(t, string(data), `"synced_to_git_sha"`)
	assert.Contains(t, string(data), `"has_test_runner"`)
	assert.Contains(t, string(data), `"practiced_concepts"`)
}

func TestExerciseKind_Valid(t *testing.T) {
	assert.True(t, KindConcept.Valid())
	assert.True(t, KindPractice.Valid())
	assert.False(t, ExerciseKind("tutorial").Valid())
	assert.False(t, ExerciseKind("").Valid())
}

func TestStatusOrDefault(t *testing.T) {
	assert.Equal(t, StatusActive, StatusOrDefault(""))
	assert.Equal(t, StatusActive, StatusOrDefault("  "))
	assert.Equal(t, StatusBeta, StatusOrDefault("beta"))
	assert.Equal(t, StatusDeprecated, StatusOrDefault("deprecated"))
}

func TestPresence(t *testing.T) {
	assert.Nil(t, Presence(""))
	assert.Nil(t, Presence(" \t"))

	p := Presence("Leap")
	require.NotNil(t, p)
	assert.Equal(t, "Leap", *p)
}

func TestExercise_Slugs(t *testing.T) {
	ex := Exercise{
		Prerequisites:     []ConceptRef{{Slug: "strings"}, {Slug: "basics"}},
		PracticedConcepts: []ConceptRef{{Slug: "numbers"}},
	}
	assert.Equal(t, []string{"strings", "basics"}, ex.PrerequisiteSlugs())
	assert.Equal(t, []string{"numbers"}, ex.PracticedConceptSlugs())
	assert.Empty(t, Exercise{}.PrerequisiteSlugs())
}

func TestExercise_TitleOrEmpty(t *testing.T) {
	assert.Equal(t, "", Exercise{}.TitleOrEmpty())
	title := "Leap"
	assert.Equal(t, "Leap", Exercise{Title: &title}.TitleOrEmpty())
}

func TestTrack_ExercisesAndIndexOf(t *testing.T) {
	track := &Track{
		ConceptExercises:  []ExerciseConfig{{UUID: "c-1", Slug: "lasagna"}},
		PracticeExercises: []ExerciseConfig{{UUID: "p-1", Slug: "hello-world"}, {UUID: "p-2", Slug: "leap"}},
		Concepts:          []ConceptConfig{{UUID: "k-1", Slug: "basics"}},
	}

	assert.Len(t, track.Exercises(KindConcept), 1)
	assert.Len(t, track.Exercises(KindPractice), 2)
	assert.Nil(t, track.Exercises(ExerciseKind("other")))

	assert.Equal(t, 1, track.IndexOf(KindPractice, "p-2"))
	assert.Equal(t, -1, track.IndexOf(KindConcept, "p-2"))
	assert.Equal(t, -1, track.IndexOf(KindPractice, "missing"))

	c, ok := track.ConceptBySlug("basics")
	require.True(t, ok)
	assert.Equal(t, "k-1", c.UUID)
	_, ok = track.ConceptBySlug("strings")
	assert.False(t, ok)
}

func TestExercisePaths(t *testing.T) {
	assert.Equal(t, "exercises/practice/leap", ExerciseDir(KindPractice, "leap"))
	assert.Equal(t, "exercises/concept/lasagna/.meta/config.json", ExerciseConfigPath(KindConcept, "lasagna"))
}
