package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	SourceFlags
}

// StatusResult is the JSON payload of the status command.
type StatusResult struct {
	Track     string        `json:"track"`
	Exercises []ir.Exercise `json:"exercises"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List stored exercises with their position and checkpoint",
		Long: `List the stored exercises of a track in position order, with their
status and the commit each one was last synced to.

The track comes from --track or the config file; without either, the
track declared by the repository's head commit is used.

Examples:
  tracksync status --db ./tracksync.db --track ruby
  tracksync status --db ./tracksync.db --repo ./content --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.SourceFlags)

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	setupLogging(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(cmd, opts.RootOptions, &opts.SourceFlags)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cfg.Database == "" {
		return WrapExitError(ExitCommandError, "invalid configuration", errors.New("database path is required"))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	track := cfg.Track
	if track == "" {
		if cfg.Repo == "" {
			return NewExitError(ExitCommandError, "a track is required: pass --track or --repo")
		}
		src, err := content.NewDirSource(cfg.Repo)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open content repository", err)
		}
		head, err := src.HeadCommit(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read head commit", err)
		}
		t, err := src.ReadTrack(ctx, head)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read track", err)
		}
		track = t.Slug
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	exercises, err := st.ListExercises(ctx, track)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list exercises", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: w}
		return formatter.Respond(CLIResponse{
			Status: "ok",
			Data:   StatusResult{Track: track, Exercises: exercises},
		})
	}

	if len(exercises) == 0 {
		fmt.Fprintf(w, "No exercises stored for track %s.\n", track)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tKIND\tSLUG\tSTATUS\tSYNCED TO")
	for _, ex := range exercises {
		synced := ex.SyncedToGitSHA
		if synced == "" {
			synced = "(never)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", ex.Position, ex.Kind, ex.Slug, ex.Status, synced)
	}
	return tw.Flush()
}
