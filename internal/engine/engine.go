package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/store"
)

// Strategy supplies the kind-specific behavior of one reconciliation.
//
// Reconcile drives a Strategy through exactly one of two paths:
//   - checkpoint only: NeedsUpdate returned false and the run is not forced;
//     Checkpoint is called and nothing else
//   - full: Apply is called, and Downstream only after Apply committed
type Strategy[T any] interface {
	// NeedsUpdate reports whether anything relevant changed.
	NeedsUpdate(ctx context.Context) (bool, error)

	// Checkpoint advances the sync checkpoint and touches nothing else.
	Checkpoint(ctx context.Context) error

	// Apply atomically writes every synchronization field and the
	// checkpoint, returning the updated entity.
	Apply(ctx context.Context) (T, error)

	// Downstream runs follow-up tasks for an applied update. Failures are
	// reported but never undo the applied update.
	Downstream(ctx context.Context, updated T) error
}

// Reconcile runs one reconciliation with the given strategy.
//
// Downstream errors are logged and dropped here: the entity's own update has
// already committed. Strategies that need to surface them record them.
func Reconcile[T any](ctx context.Context, st Strategy[T], force bool) (ir.Outcome, error) {
	if !force {
		changed, err := st.NeedsUpdate(ctx)
		if err != nil {
			return "", err
		}
		if !changed {
			if err := st.Checkpoint(ctx); err != nil {
				return "", err
			}
			return ir.OutcomeCheckpointOnly, nil
		}
	}

	updated, err := st.Apply(ctx)
	if err != nil {
		return "", err
	}

	if err := st.Downstream(ctx, updated); err != nil {
		slog.Warn("downstream tasks failed", "error", err)
	}
	return ir.OutcomeReconciled, nil
}

// ExerciseStore is the entity store the engine writes exercises through.
type ExerciseStore interface {
	ReadExercise(ctx context.Context, uuid string) (ir.Exercise, error)
	UpdateExercise(ctx context.Context, u store.ExerciseUpdate) error
	AdvanceCheckpoint(ctx context.Context, exerciseID int64, sha string) error
}

// Downstream is the set of tasks invoked after a full reconciliation, in
// order: author sync, contributor sync, content-updated notification.
type Downstream interface {
	SyncAuthors(ctx context.Context, ex ir.Exercise, usernames []string) error
	SyncContributors(ctx context.Context, ex ir.Exercise, usernames []string) error
	NotifyContentUpdated(ctx context.Context, ex ir.Exercise) error
}

// ExerciseStrategy is the Strategy for exercises of either kind.
type ExerciseStrategy struct {
	session    *Session
	store      ExerciseStore
	concepts   ConceptFinder
	downstream Downstream

	detection     Detection
	downstreamErr error
}

var _ Strategy[ir.Exercise] = (*ExerciseStrategy)(nil)

// NewExerciseStrategy creates the strategy for one session.
// A nil downstream skips the follow-up tasks.
func NewExerciseStrategy(s *Session, st ExerciseStore, concepts ConceptFinder, downstream Downstream) *ExerciseStrategy {
	return &ExerciseStrategy{
		session:    s,
		store:      st,
		concepts:   concepts,
		downstream: downstream,
	}
}

// Detection returns the change detection result, if NeedsUpdate ran.
func (e *ExerciseStrategy) Detection() Detection {
	return e.detection
}

// DownstreamErr returns the joined downstream task errors, if any.
func (e *ExerciseStrategy) DownstreamErr() error {
	return e.downstreamErr
}

// NeedsUpdate runs change detection.
func (e *ExerciseStrategy) NeedsUpdate(ctx context.Context) (bool, error) {
	d, err := Detect(ctx, e.session)
	if err != nil {
		return false, err
	}
	e.detection = d
	return d.Changed(), nil
}

// Checkpoint advances synced_to_git_sha to the head commit.
func (e *ExerciseStrategy) Checkpoint(ctx context.Context) error {
	ex := e.session.Exercise()
	if err := e.store.AdvanceCheckpoint(ctx, ex.ID, e.session.HeadCommit()); err != nil {
		return e.session.fail(ErrCodePersistFailed, "advance checkpoint", err)
	}
	return nil
}

// Apply resolves every field against the head commit and writes them, with
// the checkpoint, in one store transaction.
func (e *ExerciseStrategy) Apply(ctx context.Context) (ir.Exercise, error) {
	s := e.session
	cfg, err := s.Config()
	if err != nil {
		return ir.Exercise{}, err
	}
	files, err := s.Files(ctx)
	if err != nil {
		return ir.Exercise{}, err
	}
	pos, err := s.Position()
	if err != nil {
		return ir.Exercise{}, err
	}
	practicedSlugs, err := s.PracticedSlugs()
	if err != nil {
		return ir.Exercise{}, err
	}

	prerequisites, err := ResolveConcepts(ctx, s.Track(), e.concepts, cfg.Prerequisites)
	if err != nil {
		return ir.Exercise{}, s.fail(ErrCodeResolveFailed, "resolve prerequisites", err)
	}
	practiced, err := ResolveConcepts(ctx, s.Track(), e.concepts, practicedSlugs)
	if err != nil {
		return ir.Exercise{}, s.fail(ErrCodeResolveFailed, "resolve practiced concepts", err)
	}

	ex := s.Exercise()
	update := store.ExerciseUpdate{
		ID:                  ex.ID,
		Slug:                cfg.Slug,
		Title:               ir.Presence(cfg.Name),
		Status:              ir.StatusOrDefault(cfg.Status),
		Difficulty:          cfg.Difficulty,
		IconName:            files.IconName,
		Blurb:               files.Blurb,
		Position:            pos,
		GitSHA:              s.HeadCommit(),
		SyncedToGitSHA:      s.HeadCommit(),
		HasTestRunner:       files.HasTestRunner,
		PrerequisiteIDs:     refIDs(prerequisites),
		PracticedConceptIDs: refIDs(practiced),
	}
	if err := e.store.UpdateExercise(ctx, update); err != nil {
		return ir.Exercise{}, s.fail(ErrCodePersistFailed, "update exercise", err)
	}

	updated, err := e.store.ReadExercise(ctx, ex.UUID)
	if err != nil {
		return ir.Exercise{}, s.fail(ErrCodePersistFailed, "reload exercise", err)
	}
	return updated, nil
}

// Downstream runs author sync, contributor sync, and the content-updated
// notification in order. Every task runs even if an earlier one failed.
func (e *ExerciseStrategy) Downstream(ctx context.Context, updated ir.Exercise) error {
	if e.downstream == nil {
		return nil
	}
	files, err := e.session.Files(ctx)
	if err != nil {
		e.downstreamErr = err
		return err
	}

	var errs []error
	if err := e.downstream.SyncAuthors(ctx, updated, files.Authors); err != nil {
		errs = append(errs, fmt.Errorf("sync authors: %w", err))
	}
	if err := e.downstream.SyncContributors(ctx, updated, files.Contributors); err != nil {
		errs = append(errs, fmt.Errorf("sync contributors: %w", err))
	}
	if err := e.downstream.NotifyContentUpdated(ctx, updated); err != nil {
		errs = append(errs, fmt.Errorf("notify content updated: %w", err))
	}
	e.downstreamErr = errors.Join(errs...)
	return e.downstreamErr
}

func refIDs(refs []ir.ConceptRef) []int64 {
	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// Reconciler reconciles exercises against a content source.
//
// Thread-safety: a Reconciler holds no per-exercise state and may be used
// from several goroutines, provided no exercise is reconciled twice at once.
type Reconciler struct {
	src        content.Source
	store      ExerciseStore
	concepts   ConceptFinder
	downstream Downstream
	anchor     string
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithAnchor sets the slug of the exercise pinned to position 0.
//
// Default: "hello-world" (DefaultAnchorSlug)
func WithAnchor(slug string) ReconcilerOption {
	return func(r *Reconciler) {
		r.anchor = slug
	}
}

// WithDownstream sets the tasks run after each full reconciliation.
func WithDownstream(d Downstream) ReconcilerOption {
	return func(r *Reconciler) {
		r.downstream = d
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(src content.Source, st ExerciseStore, concepts ConceptFinder, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		src:      src,
		store:    st,
		concepts: concepts,
		anchor:   DefaultAnchorSlug,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes one reconciliation.
type Result struct {
	Outcome       ir.Outcome
	Detection     Detection
	DownstreamErr error
}

// Reconcile reads the head commit and track snapshot, then reconciles ex.
func (r *Reconciler) Reconcile(ctx context.Context, ex ir.Exercise, force bool) (Result, error) {
	track, err := r.headTrack(ctx)
	if err != nil {
		return Result{}, newReconcileError(ErrCodeSourceFailed, ex.UUID, ex.Slug, "read head track", err)
	}
	return r.ReconcileAt(ctx, track, ex, force)
}

// ReconcileAt reconciles ex against an already loaded track snapshot.
func (r *Reconciler) ReconcileAt(ctx context.Context, track *ir.Track, ex ir.Exercise, force bool) (Result, error) {
	session, err := NewSession(r.src, track, ex, r.anchor)
	if err != nil {
		return Result{}, newReconcileError(ErrCodeSourceFailed, ex.UUID, ex.Slug, "create session", err)
	}
	strategy := NewExerciseStrategy(session, r.store, r.concepts, r.downstream)

	outcome, err := Reconcile[ir.Exercise](ctx, strategy, force)
	result := Result{
		Outcome:       outcome,
		Detection:     strategy.Detection(),
		DownstreamErr: strategy.DownstreamErr(),
	}
	if err != nil {
		return result, err
	}

	slog.Debug("exercise reconciled",
		"exercise", ex.Slug,
		"uuid", ex.UUID,
		"outcome", outcome,
		"trigger", result.Detection.Trigger,
		"field", result.Detection.Field,
		"forced", force,
	)
	return result, nil
}

// Plan runs change detection only. Nothing is written.
func (r *Reconciler) Plan(ctx context.Context, track *ir.Track, ex ir.Exercise) (Detection, error) {
	session, err := NewSession(r.src, track, ex, r.anchor)
	if err != nil {
		return Detection{}, newReconcileError(ErrCodeSourceFailed, ex.UUID, ex.Slug, "create session", err)
	}
	return Detect(ctx, session)
}

func (r *Reconciler) headTrack(ctx context.Context) (*ir.Track, error) {
	head, err := r.src.HeadCommit(ctx)
	if err != nil {
		return nil, err
	}
	return r.src.ReadTrack(ctx, head)
}
