package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/engine"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/tasks"
	"github.com/roach88/tracksync/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Reports holds the report of every sync, force and plan step, in order.
	Reports []*engine.Report `json:"reports"`

	// Output is the deterministic text transcript compared against golden files.
	Output string `json:"-"`
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// harness holds the per-scenario wiring.
type harness struct {
	repo   *testutil.Repo
	src    *content.DirSource
	store  *store.Store
	runner *engine.Runner
	anchor string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh repository and database in a temporary
// directory that is removed afterwards. Run IDs and timestamps are
// deterministic.
//
// An error is returned when the scenario cannot be executed at all;
// failed expectations are reported through Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "tracksync-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	h, err := setup(dir, scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	result := &Result{Pass: true, Reports: []*engine.Report{}}
	var out bytes.Buffer

	head := scenario.Commits[0].SHA
	for i, step := range scenario.Steps {
		if step.Head != "" {
			head = step.Head
		}
		if err := h.repo.SetHead(head); err != nil {
			return nil, err
		}
		fmt.Fprintf(&out, "== step %d: %s @%s\n", i+1, step.Action, head)

		report, err := h.execute(ctx, step, &out)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Action, err)
		}
		if report == nil {
			continue
		}
		result.Reports = append(result.Reports, report)
		for _, msg := range checkExpect(report, step.Expect) {
			result.AddError(fmt.Sprintf("steps[%d] (%s @%s): %s", i, step.Action, head, msg))
		}
	}

	fmt.Fprintln(&out, "== state")
	if err := writeState(ctx, &out, h.store); err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	result.Output = out.String()

	for _, msg := range EvaluateAssertions(ctx, h.store, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func setup(dir string, scenario *Scenario) (*harness, error) {
	repo, err := testutil.NewRepo(filepath.Join(dir, "repo"))
	if err != nil {
		return nil, err
	}
	if err := writeCommits(repo, scenario.Commits); err != nil {
		return nil, fmt.Errorf("failed to write commits: %w", err)
	}
	if err := repo.SetHead(scenario.Commits[0].SHA); err != nil {
		return nil, err
	}
	src, err := content.NewDirSource(repo.Root)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dir, "tracksync.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	anchor := scenario.Anchor
	if anchor == "" {
		anchor = engine.DefaultAnchorSlug
	}
	workers := scenario.Workers
	if workers == 0 {
		workers = engine.DefaultWorkers
	}

	clock := testutil.NewDeterministicClock()
	rec := engine.NewReconciler(src, st, st,
		engine.WithAnchor(anchor),
		engine.WithDownstream(tasks.New(st, tasks.WithClock(clock.Now))))
	runner := engine.NewRunner(src, st, rec,
		engine.WithWorkers(workers),
		engine.WithRunIDGenerator(testutil.NewSequentialRunIDs("run")),
		engine.WithClock(clock.Now))

	return &harness{repo: repo, src: src, store: st, runner: runner, anchor: anchor}, nil
}

// execute runs one step and writes its transcript. Seed steps return a nil report.
func (h *harness) execute(ctx context.Context, step Step, out io.Writer) (*engine.Report, error) {
	var (
		report *engine.Report
		err    error
	)
	switch step.Action {
	case ActionSeed:
		seeded, err := engine.Seed(ctx, h.src, h.store, h.anchor)
		if err != nil {
			return nil, err
		}
		_, err = fmt.Fprintf(out, "seeded track=%s head=%s concepts=%d users=%d exercises=%d\n",
			seeded.Track, seeded.HeadSHA, seeded.Concepts, seeded.Users, seeded.Exercises)
		return nil, err
	case ActionSync, ActionForce:
		report, err = h.runner.Run(ctx, engine.RunOptions{Force: step.Action == ActionForce})
	case ActionPlan:
		report, err = h.runner.Plan(ctx, engine.RunOptions{})
	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
	if err != nil {
		return nil, err
	}
	if err := report.WriteText(out); err != nil {
		return nil, err
	}
	return report, nil
}

// checkExpect compares a report against a step's expectations.
func checkExpect(report *engine.Report, expect *StepExpect) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	count := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("expected %s=%d, got %d", name, *want, got))
		}
	}
	count("checkpoint_only", expect.CheckpointOnly, report.CheckpointOnly)
	count("reconciled", expect.Reconciled, report.Reconciled)
	count("failed", expect.Failed, report.Failed)

	entries := map[string]engine.Entry{}
	for _, e := range report.Entries {
		entries[e.Slug] = e
	}
	for _, slug := range sortedKeys(expect.Outcomes) {
		e, ok := entries[slug]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("expected outcome for %s, not in report", slug))
		case e.Status() != expect.Outcomes[slug]:
			errs = append(errs, fmt.Sprintf("expected %s to be %s, got %s", slug, expect.Outcomes[slug], e.Status()))
		}
	}
	for _, slug := range sortedKeys(expect.Details) {
		e, ok := entries[slug]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("expected detail for %s, not in report", slug))
		case e.Detail() != expect.Details[slug]:
			errs = append(errs, fmt.Sprintf("expected %s detail %q, got %q", slug, expect.Details[slug], e.Detail()))
		}
	}
	return errs
}

// writeState renders every exercise of the sample track, in store order.
func writeState(ctx context.Context, w io.Writer, st *store.Store) error {
	exercises, err := st.ListExercises(ctx, testutil.SampleTrack)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, ex := range exercises {
		synced := ex.SyncedToGitSHA
		if synced == "" {
			synced = "-"
		}
		title := "-"
		if ex.Title != nil {
			title = *ex.Title
		}
		if _, err := fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", ex.Position, ex.Slug, ex.Status, synced, title); err != nil {
			return err
		}
	}
	return tw.Flush()
}
