package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rkeeler/archery-sync/internal/calendar"
	"github.com/rkeeler/archery-sync/internal/event"
	"github.com/rkeeler/archery-sync/internal/fetch"
	"github.com/rkeeler/archery-sync/internal/metrics"
	"github.com/rkeeler/archery-sync/internal/scrape"
)

// Summary aggregates the outcomes of one run.
type Summary struct {
	Total     int `json:"total"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Degraded  int `json:"degraded"` // events synced from listing data after a detail fetch failure
}

// Changed reports whether the run wrote anything to the store.
func (s Summary) Changed() bool { return s.Created+s.Updated > 0 }

// Runner drives the full pipeline: listing fetch, extraction, per-event
// enrichment, merge, and reconciliation, sequentially in listing order.
type Runner struct {
	Source     *fetch.Source
	Enricher   *scrape.Enricher
	Reconciler *Reconciler
	Metrics    *metrics.Metrics // optional
	ICSDir     string           // optional; written for created/updated entries
}

// Run executes one sync. A listing fetch failure is fatal; a detail fetch
// failure degrades that single event to listing-level data. Entries written
// before a later fatal error remain in place.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	var sum Summary

	page, err := r.Source.FetchListing(ctx)
	if err != nil {
		r.countRun("error")
		return sum, err
	}
	slog.Info("fetched listing", "url", page.URL)

	records, err := scrape.ExtractListing(page.Body, page.BaseURL)
	if err != nil {
		r.countRun("error")
		return sum, err
	}
	slog.Info("extracted listing records", "count", len(records))

	for _, rec := range records {
		sum.Total++

		details, err := r.Enricher.EnrichOne(ctx, rec.URL)
		if err != nil {
			// One bad detail page must not abort the batch.
			slog.Warn("detail enrichment failed, using listing fields",
				"name", rec.Name, "url", rec.URL, "error", err)
			details = event.Details{}
			sum.Degraded++
		}

		res, err := r.Reconciler.Reconcile(ctx, event.Merge(rec, details))
		if err != nil {
			r.countRun("error")
			return sum, fmt.Errorf("reconciling %q: %w", rec.Name, err)
		}

		r.countEvent(res.Outcome)
		switch res.Outcome {
		case Created:
			sum.Created++
			slog.Info("created entry", "name", rec.Name, "entry_id", res.Entry.ID)
		case Updated:
			sum.Updated++
			slog.Info("updated entry", "name", rec.Name, "entry_id", res.Entry.ID)
		case Unchanged:
			sum.Unchanged++
		case Skipped:
			sum.Skipped++
		}

		if r.ICSDir != "" && (res.Outcome == Created || res.Outcome == Updated) {
			if err := calendar.WriteICS(r.ICSDir, res.Entry); err != nil {
				slog.Warn("ics export failed", "entry_id", res.Entry.ID, "error", err)
			}
		}
	}

	r.countRun("ok")
	if r.Metrics != nil {
		r.Metrics.RunDuration.Observe(time.Since(started).Seconds())
	}
	slog.Info("run complete",
		"total", sum.Total, "created", sum.Created, "updated", sum.Updated,
		"unchanged", sum.Unchanged, "skipped", sum.Skipped, "degraded", sum.Degraded)
	return sum, nil
}

func (r *Runner) countEvent(o Outcome) {
	if r.Metrics != nil {
		r.Metrics.EventsTotal.WithLabelValues(string(o)).Inc()
	}
}

func (r *Runner) countRun(result string) {
	if r.Metrics != nil {
		r.Metrics.RunsTotal.WithLabelValues(result).Inc()
	}
}
