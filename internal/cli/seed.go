package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/engine"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	SourceFlags
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the concepts, users and exercises declared at the head commit",
		Long: `Create every concept, user and exercise declared at the content
repository's head commit that the database does not have yet. Existing rows
are left alone.

New exercises have no checkpoint, so the next sync reconciles them in full.

Example:
  tracksync seed --db ./tracksync.db --repo ./content`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.SourceFlags)

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	setupLogging(cmd.ErrOrStderr(), opts.Verbose)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(cmd, opts.RootOptions, &opts.SourceFlags)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer e.Close()
	slog.Debug("seeding", "database", cfg.Database, "repo", cfg.Repo, "anchor", cfg.Anchor)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	report, err := engine.Seed(ctx, e.src, e.store, cfg.Anchor)
	if err != nil {
		return WrapExitError(ExitFailure, "seed failed", err)
	}
	if cfg.Track != "" && cfg.Track != report.Track {
		slog.Warn("seeded track differs from configured track", "configured", cfg.Track, "seeded", report.Track)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(fmt.Sprintf("seeded track=%s head=%s concepts=%d users=%d exercises=%d",
		report.Track, report.HeadSHA, report.Concepts, report.Users, report.Exercises))
}
