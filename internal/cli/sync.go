package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/engine"
)

// SyncOptions holds flags for the sync and plan commands.
type SyncOptions struct {
	*RootOptions
	SourceFlags
	Force bool

	// RunIDs overrides the sync run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return newSyncCommand(&SyncOptions{RootOptions: rootOpts})
}

func newSyncCommand(opts *SyncOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile every exercise of a track with the head commit",
		Long: `Reconcile every stored exercise of a track with the content repository's
head commit.

Each exercise is compared with what changed since its checkpoint. Unchanged
exercises only have their checkpoint advanced; changed ones are rewritten in
full and their authors, contributors and site updates are synced. One failing
exercise never stops the others.

Exit codes:
  0 - Every exercise reconciled
  1 - One or more exercises failed
  2 - Command error (invalid config, repository or database not found, etc.)

Examples:
  tracksync sync --db ./tracksync.db --repo ./content
  tracksync sync --force --workers 8
  tracksync sync --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd, false)
		},
	}

	addSourceFlags(cmd, &opts.SourceFlags)
	cmd.Flags().BoolVar(&opts.Force, "force", false, "rewrite every exercise, skipping change detection")

	return cmd
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlanCommand(&SyncOptions{RootOptions: rootOpts})
}

func newPlanCommand(opts *SyncOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a sync would do, without writing",
		Long: `Run change detection for every stored exercise of a track and report
which ones a sync would rewrite, and why. Nothing is written.

Examples:
  tracksync plan --db ./tracksync.db --repo ./content
  tracksync plan --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd, true)
		},
	}

	addSourceFlags(cmd, &opts.SourceFlags)

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command, plan bool) error {
	setupLogging(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(cmd, opts.RootOptions, &opts.SourceFlags)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	var runnerOpts []engine.RunnerOption
	if opts.RunIDs != nil {
		runnerOpts = append(runnerOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	runner := e.runner(runnerOpts...)

	runOpts := engine.RunOptions{Track: cfg.Track, Force: opts.Force}
	var report *engine.Report
	if plan {
		report, err = runner.Plan(ctx, runOpts)
	} else {
		report, err = runner.Run(ctx, runOpts)
	}
	if err != nil {
		if report == nil {
			return WrapExitError(ExitCommandError, "sync failed", err)
		}
		// The run itself completed; only its bookkeeping failed.
		return WrapExitError(ExitFailure, "failed to record sync run", err)
	}

	return writeReport(cmd, opts.RootOptions, report)
}

// writeReport outputs a report and maps failed exercises to ExitFailure.
func writeReport(cmd *cobra.Command, rootOpts *RootOptions, report *engine.Report) error {
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	var failure *ExitError
	if report.Failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d exercise(s) failed to reconcile", report.Failed))
	}

	if rootOpts.Format == "json" {
		response := CLIResponse{Status: "ok", Data: report, RunID: report.RunID}
		if failure != nil {
			response.Status = "error"
			response.Error = &CLIError{Code: "E_SYNC_FAILED", Message: failure.Message}
		}
		if err := formatter.Respond(response); err != nil {
			return err
		}
	} else if err := report.WriteText(formatter.Writer); err != nil {
		return err
	}

	if failure != nil {
		return failure
	}
	return nil
}
