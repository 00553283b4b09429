package ir

import "time"

// NOTE: These are store-layer records. They use auto-increment IDs for FK
// references alongside the stable UUIDs carried by the content repository.

// Concept is a persisted concept, looked up by UUID when resolving references.
type Concept struct {
	ID    int64  `json:"id"`
	UUID  string `json:"uuid"`
	Track string `json:"track"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
}

// User is a persisted person that can author or contribute to exercises.
type User struct {
	ID             int64  `json:"id"`
	GithubUsername string `json:"github_username"`
}

// SiteUpdateNewExercise is the site update kind recorded when an exercise's
// content is published.
const SiteUpdateNewExercise = "new_exercise"

// SyncRun records one whole-track sync run.
type SyncRun struct {
	ID             string     `json:"id"`
	Track          string     `json:"track"`
	HeadSHA        string     `json:"head_sha"`
	Forced         bool       `json:"forced"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	CheckpointOnly int        `json:"checkpoint_only"`
	Reconciled     int        `json:"reconciled"`
	Failed         int        `json:"failed"`
}
