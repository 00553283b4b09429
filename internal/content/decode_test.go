package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/ir"
)

func TestParseTrack(t *testing.T) {
	data := []byte(`{
  "slug": "ruby",
  "exercises": {
    "concept": [
      {"uuid": " u-1 ", "slug": "lasagna", "name": "Lasagna", "difficulty": 1, "concepts": ["basics"]}
    ],
    "practice": [
      {"uuid": "u-2", "slug": "leap", "name": "Leap", "status": "beta", "difficulty": 2,
       "prerequisites": ["conditionals"], "practices": ["numbers", "conditionals"]}
    ]
  },
  "concepts": [
    {"uuid": "c-1", "slug": "basics", "name": "Basics"}
  ]
}`)

	track, err := parseTrack("abc", data)
	require.NoError(t, err)

	assert.Equal(t, "ruby", track.Slug)
	assert.Equal(t, "abc", track.Commit)
	require.Len(t, track.ConceptExercises, 1)
	assert.Equal(t, "u-1", track.ConceptExercises[0].UUID)
	assert.Equal(t, []string{"basics"}, track.ConceptExercises[0].Concepts)

	require.Len(t, track.PracticeExercises, 1)
	leap := track.PracticeExercises[0]
	assert.Equal(t, "beta", leap.Status)
	assert.Equal(t, 2, leap.Difficulty)
	assert.Equal(t, []string{"numbers", "conditionals"}, leap.Practices)

	require.Len(t, track.Concepts, 1)
	assert.Equal(t, "basics", track.Concepts[0].Slug)
}

func TestParseTrack_NormalizesUnicode(t *testing.T) {
	// "Cafe" followed by a combining acute accent.
	data := []byte(`{"slug": "ruby", "exercises": {"concept": [], "practice": [
	  {"uuid": "u-1", "slug": "cafe", "name": "Cafe\u0301", "difficulty": 1}
	]}, "concepts": []}`)

	track, err := parseTrack("abc", data)
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", track.PracticeExercises[0].Name)
}

func TestParseTrack_Malformed(t *testing.T) {
	_, err := parseTrack("abc", []byte(`{"slug": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.json")
}

func TestParseExercise_Defaults(t *testing.T) {
	data := []byte(`{
  "authors": ["alice"],
  "files": {
    "solution": ["leap.rb"],
    "test": ["leap_test.rb"],
    "example": [".meta/example.rb"]
  }
}`)

	files, err := parseExercise(ir.KindPractice, "leap", data)
	require.NoError(t, err)

	assert.Equal(t, "leap", files.IconName)
	assert.True(t, files.HasTestRunner)
	assert.Equal(t, []string{"alice"}, files.Authors)
	assert.Nil(t, files.Contributors)
	assert.Equal(t, "exercises/practice/leap/.meta/config.json", files.ConfigPath)
	assert.Equal(t, []string{
		"exercises/practice/leap/leap_test.rb",
		"exercises/practice/leap/.meta/example.rb",
	}, files.ToolingPaths)
}

func TestParseExercise_ExplicitValues(t *testing.T) {
	data := []byte(`{
  "blurb": "Learn about lasagna.",
  "icon": "oven",
  "authors": [],
  "contributors": ["bob"],
  "test_runner": false,
  "files": {"exemplar": [".meta/exemplar.rb"], "editor": ["./helper.rb"], "invalidator": ["Gemfile"]}
}`)

	files, err := parseExercise(ir.KindConcept, "lasagna", data)
	require.NoError(t, err)

	assert.Equal(t, "Learn about lasagna.", files.Blurb)
	assert.Equal(t, "oven", files.IconName)
	assert.False(t, files.HasTestRunner)
	assert.Equal(t, []string{"bob"}, files.Contributors)
	assert.Equal(t, []string{
		"exercises/concept/lasagna/.meta/exemplar.rb",
		"exercises/concept/lasagna/helper.rb",
		"exercises/concept/lasagna/Gemfile",
	}, files.ToolingPaths)
}
