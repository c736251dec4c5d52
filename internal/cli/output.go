package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rkeeler/archery-sync/internal/reconcile"
)

// OutputFormat selects how a run summary is rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunOutput is the machine- and human-readable result of one sync run.
type RunOutput struct {
	CheckedAt time.Time         `json:"checked_at"`
	DryRun    bool              `json:"dry_run"`
	Summary   reconcile.Summary `json:"summary"`
}

// WriteOutput renders the run result to w in the requested format.
func WriteOutput(w io.Writer, out *RunOutput, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if out.DryRun {
		fmt.Fprintln(w, "Dry run (in-memory store; nothing written to the configured calendar).")
	}
	s := out.Summary
	fmt.Fprintf(w, "Processed %d events: %d created, %d updated, %d unchanged", s.Total, s.Created, s.Updated, s.Unchanged)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", s.Skipped)
	}
	if s.Degraded > 0 {
		fmt.Fprintf(w, " (%d from listing data only)", s.Degraded)
	}
	fmt.Fprintln(w)
	return nil
}
