package ir

import "path"

// TrackConfigPath is the path of the track-level config file, relative to
// the repository root. It declares order and core fields for every exercise.
const TrackConfigPath = "config.json"

// ExerciseConfig is one exercise entry from the track config.
type ExerciseConfig struct {
	UUID          string   `json:"uuid"`
	Slug          string   `json:"slug"`
	Name          string   `json:"name"`
	Status        string   `json:"status,omitempty"`
	Difficulty    int      `json:"difficulty"`
	Prerequisites []string `json:"prerequisites,omitempty"`

	// Practices lists the concepts a practice exercise practices.
	Practices []string `json:"practices,omitempty"`

	// Concepts lists the concepts a concept exercise teaches.
	Concepts []string `json:"concepts,omitempty"`
}

// ConceptConfig is one concept entry from the track config.
type ConceptConfig struct {
	UUID string `json:"uuid"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Track is the snapshot of a track's config at one commit.
// It is shared read-only across all reconciliations of a run.
type Track struct {
	Slug              string           `json:"slug"`
	Commit            string           `json:"commit"`
	ConceptExercises  []ExerciseConfig `json:"concept_exercises"`
	PracticeExercises []ExerciseConfig `json:"practice_exercises"`
	Concepts          []ConceptConfig  `json:"concepts"`
}

// Exercises returns the ordered exercise list for the given kind.
func (t *Track) Exercises(kind ExerciseKind) []ExerciseConfig {
	switch kind {
	case KindConcept:
		return t.ConceptExercises
	case KindPractice:
		return t.PracticeExercises
	default:
		return nil
	}
}

// IndexOf returns the position of the exercise with the given UUID within its
// kind's list, or -1 when the track no longer declares it.
func (t *Track) IndexOf(kind ExerciseKind, uuid string) int {
	for i, e := range t.Exercises(kind) {
		if e.UUID == uuid {
			return i
		}
	}
	return -1
}

// ConceptBySlug finds a concept declared by the track.
func (t *Track) ConceptBySlug(slug string) (ConceptConfig, bool) {
	for _, c := range t.Concepts {
		if c.Slug == slug {
			return c, true
		}
	}
	return ConceptConfig{}, false
}

// ExerciseFiles is the per-exercise data read from the exercise's own
// directory at one commit.
type ExerciseFiles struct {
	Kind          ExerciseKind `json:"kind"`
	Slug          string       `json:"slug"`
	Blurb         string       `json:"blurb"`
	IconName      string       `json:"icon_name"`
	Authors       []string     `json:"authors"`
	Contributors  []string     `json:"contributors"`
	HasTestRunner bool         `json:"has_test_runner"`

	// ConfigPath is the repository-relative path of .meta/config.json.
	ConfigPath string `json:"config_path"`

	// ToolingPaths are repository-relative paths of test, example, exemplar,
	// editor and invalidator files.
	ToolingPaths []string `json:"tooling_paths"`
}

// ExerciseDir returns the repository-relative directory of an exercise.
func ExerciseDir(kind ExerciseKind, slug string) string {
	return path.Join("exercises", string(kind), slug)
}

// ExerciseConfigPath returns the repository-relative path of an exercise's
// .meta/config.json.
func ExerciseConfigPath(kind ExerciseKind, slug string) string {
	return path.Join(ExerciseDir(kind, slug), ".meta", "config.json")
}
