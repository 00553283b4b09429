package engine

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Status returns the entry's outcome, or "failed".
func (e Entry) Status() string {
	if e.Failed() {
		return "failed"
	}
	return string(e.Outcome)
}

// Detail returns the trigger and field that caused a full reconciliation,
// or the error code of a failed one.
func (e Entry) Detail() string {
	switch {
	case e.Failed():
		if e.ErrorCode != "" {
			return e.ErrorCode
		}
		return "ERROR"
	case e.Trigger != TriggerNone:
		return string(e.Trigger) + ":" + e.Field
	default:
		return ""
	}
}

// WriteText renders the report as aligned plain text, one line per exercise
// followed by a summary line. The output is deterministic for a given report.
func (r *Report) WriteText(w io.Writer) error {
	header := "plan"
	if r.RunID != "" {
		header = "run " + r.RunID
	}
	if _, err := fmt.Fprintf(w, "%s track=%s head=%s forced=%t\n", header, r.Track, r.HeadSHA, r.Forced); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range r.Entries {
		line := fmt.Sprintf("  %s\t%s\t%s\t%s", e.Status(), e.Kind, e.Slug, e.Detail())
		if e.Downstream != "" {
			line += "\tdownstream_failed"
		}
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "summary: checkpoint_only=%d reconciled=%d failed=%d\n",
		r.CheckpointOnly, r.Reconciled, r.Failed)
	return err
}
