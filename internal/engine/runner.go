package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
)

// DefaultWorkers is the default number of exercises reconciled in parallel.
const DefaultWorkers = 4

// RunStore is the store surface a Runner needs beyond ExerciseStore.
type RunStore interface {
	ListExercises(ctx context.Context, track string) ([]ir.Exercise, error)
	StartSyncRun(ctx context.Context, run ir.SyncRun) error
	FinishSyncRun(ctx context.Context, run ir.SyncRun) error
}

// Runner reconciles every exercise of a track in one sync run.
//
// The head commit and track snapshot are read once per run and shared,
// read-only, by all workers. Each exercise gets its own Session. A failed
// exercise is recorded in the report and never stops its siblings; only
// context cancellation ends a run early.
type Runner struct {
	src        content.Source
	store      RunStore
	reconciler *Reconciler
	workers    int
	ids        RunIDGenerator
	now        func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the maximum number of exercises reconciled at once.
//
// Default: 4 (DefaultWorkers). Values below 1 are treated as 1.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// WithRunIDGenerator overrides the run ID generator (for testing).
func WithRunIDGenerator(g RunIDGenerator) RunnerOption {
	return func(r *Runner) {
		r.ids = g
	}
}

// WithClock overrides the wall clock used for run timestamps (for testing).
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner.
func NewRunner(src content.Source, st RunStore, rec *Reconciler, opts ...RunnerOption) *Runner {
	r := &Runner{
		src:        src,
		store:      st,
		reconciler: rec,
		workers:    DefaultWorkers,
		ids:        UUIDv7Generator{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOptions selects what a run reconciles.
type RunOptions struct {
	// Track is the track slug. Empty means the slug declared by the head
	// track config.
	Track string

	// Force takes the full reconciliation path for every exercise.
	Force bool
}

// Entry is the per-exercise line of a Report.
type Entry struct {
	UUID       string          `json:"uuid"`
	Slug       string          `json:"slug"`
	Kind       ir.ExerciseKind `json:"kind"`
	Outcome    ir.Outcome      `json:"outcome,omitempty"`
	Trigger    Trigger         `json:"trigger,omitempty"`
	Field      string          `json:"field,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorCode  string          `json:"error_code,omitempty"`
	Downstream string          `json:"downstream_error,omitempty"`
}

// Failed reports whether the exercise failed to reconcile.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Report summarizes a sync run. Entries keep the store's exercise order.
type Report struct {
	RunID          string  `json:"run_id"`
	Track          string  `json:"track"`
	HeadSHA        string  `json:"head_sha"`
	Forced         bool    `json:"forced"`
	Entries        []Entry `json:"entries"`
	CheckpointOnly int     `json:"checkpoint_only"`
	Reconciled     int     `json:"reconciled"`
	Failed         int     `json:"failed"`
}

// Run reconciles every persisted exercise of the track against head.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	track, exercises, err := r.load(ctx, opts.Track)
	if err != nil {
		return nil, err
	}

	run := ir.SyncRun{
		ID:        r.ids.Generate(),
		Track:     track.Slug,
		HeadSHA:   track.Commit,
		Forced:    opts.Force,
		StartedAt: r.now(),
	}
	if err := r.store.StartSyncRun(ctx, run); err != nil {
		return nil, err
	}
	slog.Info("sync run started",
		"run", run.ID, "track", run.Track, "head", run.HeadSHA,
		"exercises", len(exercises), "forced", opts.Force, "workers", r.workers)

	entries := make([]Entry, len(exercises))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, ex := range exercises {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = r.reconcileOne(gctx, track, ex, opts.Force)
			return nil
		})
	}
	waitErr := g.Wait()

	report := &Report{
		RunID:   run.ID,
		Track:   track.Slug,
		HeadSHA: track.Commit,
		Forced:  opts.Force,
		Entries: entries,
	}
	report.count()

	finished := r.now()
	run.FinishedAt = &finished
	run.CheckpointOnly = report.CheckpointOnly
	run.Reconciled = report.Reconciled
	run.Failed = report.Failed

	if waitErr != nil {
		// The run row still records what was done before cancellation.
		if err := r.store.FinishSyncRun(context.WithoutCancel(ctx), run); err != nil {
			slog.Error("failed to record cancelled sync run", "run", run.ID, "error", err)
		}
		slog.Warn("sync run cancelled",
			"run", run.ID,
			"checkpoint_only", report.CheckpointOnly,
			"reconciled", report.Reconciled,
			"failed", report.Failed)
		return nil, fmt.Errorf("sync run %s: %w", run.ID, waitErr)
	}

	if err := r.store.FinishSyncRun(ctx, run); err != nil {
		return report, err
	}

	slog.Info("sync run finished",
		"run", run.ID,
		"checkpoint_only", report.CheckpointOnly,
		"reconciled", report.Reconciled,
		"failed", report.Failed)
	return report, nil
}

// count tallies the entries' outcomes. Entries never started (zero value)
// are not counted.
func (r *Report) count() {
	for _, e := range r.Entries {
		switch {
		case e.Failed():
			r.Failed++
		case e.Outcome == ir.OutcomeCheckpointOnly:
			r.CheckpointOnly++
		case e.Outcome == ir.OutcomeReconciled:
			r.Reconciled++
		}
	}
}

// Plan runs change detection for every exercise of the track without writing.
// Forced plans are not meaningful; every entry reports its detection only.
func (r *Runner) Plan(ctx context.Context, opts RunOptions) (*Report, error) {
	track, exercises, err := r.load(ctx, opts.Track)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Track:   track.Slug,
		HeadSHA: track.Commit,
		Entries: make([]Entry, len(exercises)),
	}
	for i, ex := range exercises {
		entry := Entry{UUID: ex.UUID, Slug: ex.Slug, Kind: ex.Kind}
		d, err := r.reconciler.Plan(ctx, track, ex)
		switch {
		case err != nil:
			entry.Error = err.Error()
			entry.ErrorCode = string(ErrorCode(err))
			report.Failed++
		case d.Changed():
			entry.Outcome = ir.OutcomeReconciled
			entry.Trigger = d.Trigger
			entry.Field = d.Field
			report.Reconciled++
		default:
			entry.Outcome = ir.OutcomeCheckpointOnly
			report.CheckpointOnly++
		}
		report.Entries[i] = entry
	}
	return report, nil
}

func (r *Runner) load(ctx context.Context, trackSlug string) (*ir.Track, []ir.Exercise, error) {
	head, err := r.src.HeadCommit(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read head commit: %w", err)
	}
	track, err := r.src.ReadTrack(ctx, head)
	if err != nil {
		return nil, nil, fmt.Errorf("read track at %s: %w", head, err)
	}
	if trackSlug != "" && trackSlug != track.Slug {
		return nil, nil, fmt.Errorf("track mismatch: repository declares %q, requested %q", track.Slug, trackSlug)
	}
	exercises, err := r.store.ListExercises(ctx, track.Slug)
	if err != nil {
		return nil, nil, fmt.Errorf("list exercises: %w", err)
	}
	return track, exercises, nil
}

func (r *Runner) reconcileOne(ctx context.Context, track *ir.Track, ex ir.Exercise, force bool) Entry {
	entry := Entry{UUID: ex.UUID, Slug: ex.Slug, Kind: ex.Kind}

	res, err := r.reconciler.ReconcileAt(ctx, track, ex, force)
	entry.Outcome = res.Outcome
	entry.Trigger = res.Detection.Trigger
	entry.Field = res.Detection.Field
	if res.DownstreamErr != nil {
		entry.Downstream = res.DownstreamErr.Error()
	}
	if err != nil {
		entry.Error = err.Error()
		entry.ErrorCode = string(ErrorCode(err))
		level := slog.LevelError
		if errors.Is(err, context.Canceled) {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "exercise reconciliation failed",
			"exercise", ex.Slug, "uuid", ex.UUID, "error", err)
	}
	return entry
}
