package ir

import "strings"

// ExerciseKind identifies one of the two ordered exercise lists of a track.
type ExerciseKind string

const (
	// KindConcept exercises teach concepts and are ordered before practice exercises.
	KindConcept ExerciseKind = "concept"

	// KindPractice exercises practice concepts and follow all concept exercises.
	KindPractice ExerciseKind = "practice"
)

// Valid reports whether k is a known exercise kind.
func (k ExerciseKind) Valid() bool {
	return k == KindConcept || k == KindPractice
}

// Status is the lifecycle state of an exercise.
type Status string

const (
	StatusActive     Status = "active"
	StatusBeta       Status = "beta"
	StatusDeprecated Status = "deprecated"
)

// StatusOrDefault returns the configured status, or StatusActive when unset.
func StatusOrDefault(s string) Status {
	if strings.TrimSpace(s) == "" {
		return StatusActive
	}
	return Status(s)
}

// Outcome is the terminal state of a single reconciliation.
type Outcome string

const (
	// OutcomeCheckpointOnly means only synced_to_git_sha was advanced.
	OutcomeCheckpointOnly Outcome = "checkpoint_only"

	// OutcomeReconciled means all synchronization fields were rewritten
	// and downstream tasks were invoked.
	OutcomeReconciled Outcome = "reconciled"
)

// Exercise is the persisted catalog record being reconciled.
//
// Title is nil when the configured name was blank. Prerequisites and
// PracticedConcepts keep the order they were declared in. Authors and
// Contributors hold GitHub usernames ordered by username.
type Exercise struct {
	ID                int64        `json:"id"`
	UUID              string       `json:"uuid"`
	Track             string       `json:"track"`
	Kind              ExerciseKind `json:"kind"`
	Slug              string       `json:"slug"`
	Title             *string      `json:"title,omitempty"`
	Status            Status       `json:"status"`
	Difficulty        int          `json:"difficulty"`
	IconName          string       `json:"icon_name"`
	Blurb             string       `json:"blurb"`
	Position          int          `json:"position"`
	GitSHA            string       `json:"git_sha"`
	SyncedToGitSHA    string       `json:"synced_to_git_sha"`
	HasTestRunner     bool         `json:"has_test_runner"`
	Prerequisites     []ConceptRef `json:"prerequisites"`
	PracticedConcepts []ConceptRef `json:"practiced_concepts"`
	Authors           []string     `json:"authors"`
	Contributors      []string     `json:"contributors"`
}

// ConceptRef is a resolved reference from an exercise to a persisted concept.
type ConceptRef struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
	Slug string `json:"slug"`
}

// PrerequisiteSlugs returns the slugs of the exercise's prerequisites.
func (e Exercise) PrerequisiteSlugs() []string {
	return refSlugs(e.Prerequisites)
}

// PracticedConceptSlugs returns the slugs of the exercise's practiced concepts.
func (e Exercise) PracticedConceptSlugs() []string {
	return refSlugs(e.PracticedConcepts)
}

// TitleOrEmpty returns the title, or "" when it is absent.
func (e Exercise) TitleOrEmpty() string {
	if e.Title == nil {
		return ""
	}
	return *e.Title
}

func refSlugs(refs []ConceptRef) []string {
	slugs := make([]string, len(refs))
	for i, r := range refs {
		slugs[i] = r.Slug
	}
	return slugs
}

// Presence returns nil for a blank string, otherwise a pointer to s.
func Presence(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
