package engine

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/tasks"
	"github.com/roach88/tracksync/internal/testutil"
)

// fixture is a seeded store plus a content repository at commit c1.
type fixture struct {
	t     *testing.T
	repo  *testutil.Repo
	tree  testutil.Tree
	track testutil.TrackFixture
	src   *content.DirSource
	store *store.Store
	rec   *Reconciler
	ids   *testutil.SequentialRunIDs
	clock *testutil.DeterministicClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := testutil.NewRepo(filepath.Join(dir, "repo"))
	require.NoError(t, err)
	track := testutil.SampleTrackFixture()
	tree, err := testutil.SampleTree(track)
	require.NoError(t, err)
	require.NoError(t, repo.CommitHead("c1", tree))

	src, err := content.NewDirSource(repo.Root)
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = Seed(context.Background(), src, s, "")
	require.NoError(t, err)

	clock := testutil.NewDeterministicClock()
	rec := NewReconciler(src, s, s, WithDownstream(tasks.New(s, tasks.WithClock(clock.Now))))

	return &fixture{t: t, repo: repo, tree: tree, track: track, src: src, store: s, rec: rec,
		ids: testutil.NewSequentialRunIDs("run"), clock: clock}
}

// newSyncedFixture returns a fixture where every exercise has been
// reconciled at c1.
func newSyncedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	report, err := f.runner().Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Zero(t, report.Failed)
	return f
}

// runner builds a Runner over the fixture. Run IDs keep counting across
// runners of one fixture.
func (f *fixture) runner(opts ...RunnerOption) *Runner {
	opts = append([]RunnerOption{
		WithRunIDGenerator(f.ids),
		WithClock(f.clock.Now),
	}, opts...)
	return NewRunner(f.src, f.store, f.rec, opts...)
}

// commit writes a new head commit derived from the current one.
func (f *fixture) commit(sha string, mutate func(track *testutil.TrackFixture, tree testutil.Tree)) {
	f.t.Helper()
	tree := f.tree.Clone()
	track := cloneTrack(f.t, f.track)
	if mutate != nil {
		mutate(&track, tree)
	}
	require.NoError(f.t, tree.SetTrack(track))
	require.NoError(f.t, f.repo.CommitHead(sha, tree))
	f.tree, f.track = tree, track
}

func (f *fixture) exercise(uuid string) ir.Exercise {
	f.t.Helper()
	ex, err := f.store.ReadExercise(context.Background(), uuid)
	require.NoError(f.t, err)
	return ex
}

func (f *fixture) headTrack() *ir.Track {
	f.t.Helper()
	ctx := context.Background()
	head, err := f.src.HeadCommit(ctx)
	require.NoError(f.t, err)
	track, err := f.src.ReadTrack(ctx, head)
	require.NoError(f.t, err)
	return track
}

func (f *fixture) session(uuid string) *Session {
	f.t.Helper()
	s, err := NewSession(f.src, f.headTrack(), f.exercise(uuid), "")
	require.NoError(f.t, err)
	return s
}

func cloneTrack(t *testing.T, in testutil.TrackFixture) testutil.TrackFixture {
	t.Helper()
	data, err := json.Marshal(in)
	require.NoError(t, err)
	var out testutil.TrackFixture
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// practice returns the practice exercise config with the given slug.
func practice(t *testing.T, track *testutil.TrackFixture, slug string) *ir.ExerciseConfig {
	t.Helper()
	for i := range track.Exercises.Practice {
		if track.Exercises.Practice[i].Slug == slug {
			return &track.Exercises.Practice[i]
		}
	}
	t.Fatalf("no practice exercise %q", slug)
	return nil
}

// recordingDownstream records task calls and can be told to fail.
type recordingDownstream struct {
	calls []string
	err   error
}

func (d *recordingDownstream) SyncAuthors(_ context.Context, ex ir.Exercise, _ []string) error {
	d.calls = append(d.calls, "authors:"+ex.Slug)
	return d.err
}

func (d *recordingDownstream) SyncContributors(_ context.Context, ex ir.Exercise, _ []string) error {
	d.calls = append(d.calls, "contributors:"+ex.Slug)
	return d.err
}

func (d *recordingDownstream) NotifyContentUpdated(_ context.Context, ex ir.Exercise) error {
	d.calls = append(d.calls, "notify:"+ex.Slug)
	return d.err
}
