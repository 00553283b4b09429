package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/tracksync/internal/ir"
)

// ExerciseUpdate carries every synchronization-relevant field of an exercise.
// It is applied as a unit by UpdateExercise.
type ExerciseUpdate struct {
	ID                  int64
	Slug                string
	Title               *string
	Status              ir.Status
	Difficulty          int
	IconName            string
	Blurb               string
	Position            int
	GitSHA              string
	SyncedToGitSHA      string
	HasTestRunner       bool
	PrerequisiteIDs     []int64
	PracticedConceptIDs []int64
}

// UpdateExercise writes all fields of u, replaces the ordered prerequisite and
// practiced-concept rows, and advances the checkpoint, in one transaction.
//
// Returns ErrNotFound (and writes nothing) if the exercise does not exist.
func (s *Store) UpdateExercise(ctx context.Context, u ExerciseUpdate) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE exercises SET
				slug = ?, title = ?, status = ?, difficulty = ?, icon_name = ?, blurb = ?,
				position = ?, git_sha = ?, synced_to_git_sha = ?, has_test_runner = ?
			WHERE id = ?
		`,
			u.Slug,
			nullString(u.Title),
			string(u.Status),
			u.Difficulty,
			u.IconName,
			u.Blurb,
			u.Position,
			u.GitSHA,
			u.SyncedToGitSHA,
			boolInt(u.HasTestRunner),
			u.ID,
		)
		if err != nil {
			return fmt.Errorf("update columns: %w", err)
		}
		if err := requireRow(result); err != nil {
			return err
		}

		if err := replaceOrdered(ctx, tx, "exercise_prerequisites", u.ID, u.PrerequisiteIDs); err != nil {
			return err
		}
		return replaceOrdered(ctx, tx, "exercise_practiced_concepts", u.ID, u.PracticedConceptIDs)
	})
	if err != nil {
		return fmt.Errorf("update exercise %d: %w", u.ID, err)
	}
	return nil
}

// AdvanceCheckpoint sets synced_to_git_sha and touches nothing else.
// Returns ErrNotFound if the exercise does not exist.
func (s *Store) AdvanceCheckpoint(ctx context.Context, exerciseID int64, sha string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE exercises SET synced_to_git_sha = ? WHERE id = ?
	`, sha, exerciseID)
	if err != nil {
		return fmt.Errorf("advance checkpoint %d: %w", exerciseID, err)
	}
	if err := requireRow(result); err != nil {
		return fmt.Errorf("advance checkpoint %d: %w", exerciseID, err)
	}
	return nil
}

// ReplaceAuthors replaces the authorship rows of an exercise.
func (s *Store) ReplaceAuthors(ctx context.Context, exerciseID int64, userIDs []int64) error {
	return s.replacePeople(ctx, "exercise_authorships", exerciseID, userIDs)
}

// ReplaceContributors replaces the contributorship rows of an exercise.
func (s *Store) ReplaceContributors(ctx context.Context, exerciseID int64, userIDs []int64) error {
	return s.replacePeople(ctx, "exercise_contributorships", exerciseID, userIDs)
}

// CreateSiteUpdate records a site update for an exercise.
// Uses ON CONFLICT DO NOTHING: returns inserted=false if one of that kind exists.
func (s *Store) CreateSiteUpdate(ctx context.Context, exerciseID int64, kind string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO site_updates (exercise_id, kind, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(exercise_id, kind) DO NOTHING
	`, exerciseID, kind, formatTime(at))
	if err != nil {
		return false, fmt.Errorf("create site update: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create site update: rows affected: %w", err)
	}
	return n > 0, nil
}

// InsertConcept creates a concept unless one with the same UUID exists.
// Returns inserted=false on conflict.
func (s *Store) InsertConcept(ctx context.Context, c ir.Concept) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO concepts (uuid, track, slug, name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uuid) DO NOTHING
	`, c.UUID, c.Track, c.Slug, c.Name)
	if err != nil {
		return false, fmt.Errorf("insert concept %s: %w", c.UUID, err)
	}
	return affected(result)
}

// InsertUser creates a user unless the username is taken.
// Returns inserted=false on conflict.
func (s *Store) InsertUser(ctx context.Context, githubUsername string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (github_username) VALUES (?)
		ON CONFLICT(github_username) DO NOTHING
	`, githubUsername)
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", githubUsername, err)
	}
	return affected(result)
}

// InsertExercise creates an exercise row with the identity columns of ex
// unless one with the same UUID exists. Synchronization fields keep their
// defaults and the checkpoint stays empty until the first reconciliation.
// Returns inserted=false on conflict.
func (s *Store) InsertExercise(ctx context.Context, ex ir.Exercise) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO exercises (uuid, track, kind, slug, title, position, synced_to_git_sha)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO NOTHING
	`, ex.UUID, ex.Track, string(ex.Kind), ex.Slug, nullString(ex.Title), ex.Position, ex.SyncedToGitSHA)
	if err != nil {
		return false, fmt.Errorf("insert exercise %s: %w", ex.UUID, err)
	}
	return affected(result)
}

// StartSyncRun records the start of a sync run.
func (s *Store) StartSyncRun(ctx context.Context, run ir.SyncRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, track, head_sha, forced, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Track, run.HeadSHA, boolInt(run.Forced), formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("start sync run %s: %w", run.ID, err)
	}
	return nil
}

// FinishSyncRun records the outcome counts and finish time of a sync run.
func (s *Store) FinishSyncRun(ctx context.Context, run ir.SyncRun) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("finish sync run %s: finished_at is required", run.ID)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE sync_runs
		SET finished_at = ?, checkpoint_only = ?, reconciled = ?, failed = ?
		WHERE id = ?
	`, formatTime(*run.FinishedAt), run.CheckpointOnly, run.Reconciled, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish sync run %s: %w", run.ID, err)
	}
	if err := requireRow(result); err != nil {
		return fmt.Errorf("finish sync run %s: %w", run.ID, err)
	}
	return nil
}

// replacePeople swaps the rows of a people join table in one transaction.
func (s *Store) replacePeople(ctx context.Context, table string, exerciseID int64, userIDs []int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE exercise_id = ?`, exerciseID); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		for _, id := range userIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO `+table+` (exercise_id, user_id) VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, exerciseID, id); err != nil {
				return fmt.Errorf("insert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s for exercise %d: %w", table, exerciseID, err)
	}
	return nil
}

// replaceOrdered swaps the rows of an ordered concept join table inside tx.
// Duplicate concept IDs keep their first position.
func replaceOrdered(ctx context.Context, tx *sql.Tx, table string, exerciseID int64, conceptIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE exercise_id = ?`, exerciseID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for ord, id := range conceptIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO `+table+` (exercise_id, concept_id, ord) VALUES (?, ?, ?)
			ON CONFLICT(exercise_id, concept_id) DO NOTHING
		`, exerciseID, id, ord); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
