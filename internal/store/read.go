package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tracksync/internal/ir"
)

const exerciseColumns = `
	id, uuid, track, kind, slug, title, status, difficulty, icon_name, blurb,
	position, git_sha, synced_to_git_sha, has_test_runner`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadExercise retrieves an exercise and its relations by UUID.
// Returns ErrNotFound if no exercise has that UUID.
func (s *Store) ReadExercise(ctx context.Context, uuid string) (ir.Exercise, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE uuid = ?`, uuid)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Exercise{}, fmt.Errorf("read exercise %s: %w", uuid, ErrNotFound)
	}
	if err != nil {
		return ir.Exercise{}, fmt.Errorf("read exercise %s: %w", uuid, err)
	}

	if err := s.loadRelations(ctx, &ex); err != nil {
		return ir.Exercise{}, fmt.Errorf("read exercise %s: %w", uuid, err)
	}
	return ex, nil
}

// ListExercises returns every exercise of a track with relations loaded.
// Results are ordered by position ASC, id ASC.
//
// Returns an empty slice (not nil) if the track has no exercises.
func (s *Store) ListExercises(ctx context.Context, track string) ([]ir.Exercise, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE track = ?
		ORDER BY position ASC, id ASC
	`, track)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}

	exercises := []ir.Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	// Close before loading relations: the pool holds a single connection.
	rows.Close()

	for i := range exercises {
		if err := s.loadRelations(ctx, &exercises[i]); err != nil {
			return nil, fmt.Errorf("list exercises: %w", err)
		}
	}
	return exercises, nil
}

// FindConceptByUUID looks up a persisted concept.
// Returns ErrNotFound if the concept has not been created yet.
func (s *Store) FindConceptByUUID(ctx context.Context, uuid string) (ir.Concept, error) {
	var c ir.Concept
	err := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, track, slug, name FROM concepts WHERE uuid = ?
	`, uuid).Scan(&c.ID, &c.UUID, &c.Track, &c.Slug, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Concept{}, fmt.Errorf("find concept %s: %w", uuid, ErrNotFound)
	}
	if err != nil {
		return ir.Concept{}, fmt.Errorf("find concept %s: %w", uuid, err)
	}
	return c, nil
}

// FindUsersByUsernames returns the users whose GitHub usernames are in names.
// Unknown usernames are skipped. Results are ordered by username.
func (s *Store) FindUsersByUsernames(ctx context.Context, names []string) ([]ir.User, error) {
	users := []ir.User{}
	if len(names) == 0 {
		return users, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, github_username FROM users
		WHERE github_username IN (`+placeholders+`)
		ORDER BY github_username COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u ir.User
		if err := rows.Scan(&u.ID, &u.GithubUsername); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// HasSiteUpdate reports whether a site update of the given kind exists.
func (s *Store) HasSiteUpdate(ctx context.Context, exerciseID int64, kind string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM site_updates WHERE exercise_id = ? AND kind = ?
	`, exerciseID, kind).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check site update: %w", err)
	}
	return count > 0, nil
}

// ReadSyncRun retrieves a sync run by ID.
// Returns ErrNotFound if no run has that ID.
func (s *Store) ReadSyncRun(ctx context.Context, id string) (ir.SyncRun, error) {
	var (
		run        ir.SyncRun
		forced     int
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, track, head_sha, forced, started_at, finished_at, checkpoint_only, reconciled, failed
		FROM sync_runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Track, &run.HeadSHA, &forced, &startedAt, &finishedAt,
		&run.CheckpointOnly, &run.Reconciled, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.SyncRun{}, fmt.Errorf("read sync run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.SyncRun{}, fmt.Errorf("read sync run %s: %w", id, err)
	}

	run.Forced = forced != 0
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return ir.SyncRun{}, fmt.Errorf("read sync run %s: %w", id, err)
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return ir.SyncRun{}, fmt.Errorf("read sync run %s: %w", id, err)
		}
		run.FinishedAt = &t
	}
	return run, nil
}

// scanExercise scans the exercise columns (without relations).
func scanExercise(row rowScanner) (ir.Exercise, error) {
	var (
		ex            ir.Exercise
		kind, status  string
		title         sql.NullString
		hasTestRunner int
	)
	if err := row.Scan(
		&ex.ID, &ex.UUID, &ex.Track, &kind, &ex.Slug, &title, &status, &ex.Difficulty,
		&ex.IconName, &ex.Blurb, &ex.Position, &ex.GitSHA, &ex.SyncedToGitSHA, &hasTestRunner,
	); err != nil {
		return ir.Exercise{}, err
	}
	ex.Kind = ir.ExerciseKind(kind)
	ex.Status = ir.Status(status)
	ex.HasTestRunner = hasTestRunner != 0
	if title.Valid {
		t := title.String
		ex.Title = &t
	}
	return ex, nil
}

// loadRelations fills the ordered concept references and the people of ex.
// Queries run one after another; each result set is closed before the next.
func (s *Store) loadRelations(ctx context.Context, ex *ir.Exercise) error {
	var err error
	if ex.Prerequisites, err = s.readConceptRefs(ctx, "exercise_prerequisites", ex.ID); err != nil {
		return err
	}
	if ex.PracticedConcepts, err = s.readConceptRefs(ctx, "exercise_practiced_concepts", ex.ID); err != nil {
		return err
	}
	if ex.Authors, err = s.readUsernames(ctx, "exercise_authorships", ex.ID); err != nil {
		return err
	}
	if ex.Contributors, err = s.readUsernames(ctx, "exercise_contributorships", ex.ID); err != nil {
		return err
	}
	return nil
}

// readConceptRefs reads an ordered concept join table. table is always a
// package constant, never caller input.
func (s *Store) readConceptRefs(ctx context.Context, table string, exerciseID int64) ([]ir.ConceptRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.uuid, c.slug
		FROM `+table+` j
		JOIN concepts c ON c.id = j.concept_id
		WHERE j.exercise_id = ?
		ORDER BY j.ord ASC
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	refs := []ir.ConceptRef{}
	for rows.Next() {
		var r ir.ConceptRef
		if err := rows.Scan(&r.ID, &r.UUID, &r.Slug); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return refs, nil
}

// readUsernames reads a people join table ordered by username.
func (s *Store) readUsernames(ctx context.Context, table string, exerciseID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.github_username
		FROM `+table+` j
		JOIN users u ON u.id = j.user_id
		WHERE j.exercise_id = ?
		ORDER BY u.github_username COLLATE BINARY ASC
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return names, nil
}
