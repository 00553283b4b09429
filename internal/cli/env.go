package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/config"
	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/engine"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/tasks"
)

// SourceFlags holds the flags shared by commands that read the content
// repository and the database. Set flags override the config file.
type SourceFlags struct {
	Database string
	Repo     string
	Track    string
	Workers  int
	Anchor   string
}

func addSourceFlags(cmd *cobra.Command, f *SourceFlags) {
	cmd.Flags().StringVar(&f.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&f.Repo, "repo", "", "path to the content repository")
	cmd.Flags().StringVar(&f.Track, "track", "", "track slug (default: the track declared by the repository)")
	cmd.Flags().IntVar(&f.Workers, "workers", engine.DefaultWorkers, "exercises reconciled in parallel")
	cmd.Flags().StringVar(&f.Anchor, "anchor", engine.DefaultAnchorSlug, "slug of the exercise pinned to position 0")
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, rootOpts *RootOptions, f *SourceFlags) (config.Config, error) {
	path, optional := rootOpts.Config, false
	if path == "" {
		path, optional = config.DefaultPath, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = f.Database
	}
	if flags.Changed("repo") {
		cfg.Repo = f.Repo
	}
	if flags.Changed("track") {
		cfg.Track = f.Track
	}
	if flags.Changed("workers") {
		cfg.Workers = f.Workers
	}
	if flags.Changed("anchor") {
		cfg.Anchor = f.Anchor
	}
	return cfg, nil
}

// env is the opened repository and database of one command invocation.
type env struct {
	cfg   config.Config
	src   *content.DirSource
	store *store.Store
}

// openEnv validates cfg and opens the repository and database.
func openEnv(cfg config.Config) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	src, err := content.NewDirSource(cfg.Repo)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open content repository", err)
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return &env{cfg: cfg, src: src, store: st}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// runner wires a Runner with the downstream task pipeline.
func (e *env) runner(opts ...engine.RunnerOption) *engine.Runner {
	rec := engine.NewReconciler(e.src, e.store, e.store,
		engine.WithAnchor(e.cfg.Anchor),
		engine.WithDownstream(tasks.New(e.store)))
	opts = append([]engine.RunnerOption{engine.WithWorkers(e.cfg.Workers)}, opts...)
	return engine.NewRunner(e.src, e.store, rec, opts...)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		cancel()
	}
}

