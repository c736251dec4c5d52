// Package reconcile maps enriched events onto the target calendar store so
// that repeated runs converge: each event is created once, updated only when
// an observable field changed, and otherwise left untouched.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rkeeler/archery-sync/internal/calendar"
	"github.com/rkeeler/archery-sync/internal/event"
)

// Outcome classifies the effect of reconciling one event.
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
	Skipped   Outcome = "skipped"
)

// Result is the effect of reconciling one event together with the stored
// entry it resolved to. Entry is zero when the event was skipped.
type Result struct {
	Outcome Outcome
	Entry   calendar.Entry
}

// Reconciler matches events against the store and applies creates/updates.
type Reconciler struct {
	store calendar.Store
	loc   *time.Location
}

// New creates a Reconciler resolving event days in loc.
func New(store calendar.Store, loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{store: store, loc: loc}
}

// Reconcile maps one enriched event onto the store. An event whose start
// date matches no known format cannot be keyed or day-scoped and is skipped.
func (r *Reconciler) Reconcile(ctx context.Context, e event.Enriched) (Result, error) {
	start := event.ParseDate(e.StartDate, r.loc)
	if start.IsZero() {
		slog.Warn("skipping event with unparseable start date",
			"name", e.Name, "start_date", e.StartDate, "url", e.URL)
		return Result{Outcome: Skipped}, nil
	}
	end := event.ParseDate(e.EndDate, r.loc)
	if end.IsZero() {
		end = start
	}

	startDay := event.DayStart(start, r.loc)
	// The source end date is inclusive; a full-day entry needs an exclusive
	// end one day past it. AddDate keeps the boundary at midnight even when
	// the zone changes offset on the end day.
	endDay := event.DayStart(end.AddDate(0, 0, 1), r.loc)

	key := event.Key(startDay, e.HostClub, e.Region, e.Category)
	want := calendar.Entry{
		Title:       event.Title(e),
		Location:    e.HostClub,
		Description: event.Description(e, key),
		Start:       startDay,
		End:         endDay,
	}

	entries, err := r.store.ListDay(ctx, startDay)
	if err != nil {
		return Result{}, fmt.Errorf("listing entries for %s: %w", startDay.Format("2006-01-02"), err)
	}

	match := matchEntry(entries, e, key)
	if match == nil {
		created, err := r.store.Create(ctx, want)
		if err != nil {
			return Result{}, fmt.Errorf("creating entry: %w", err)
		}
		return Result{Outcome: Created, Entry: created}, nil
	}

	want.ID = match.ID
	if want.Equal(*match) {
		return Result{Outcome: Unchanged, Entry: *match}, nil
	}
	if err := r.store.Update(ctx, want); err != nil {
		return Result{}, fmt.Errorf("updating entry %s: %w", match.ID, err)
	}
	return Result{Outcome: Updated, Entry: want}, nil
}

// matchEntry scans the day's entries for the event. Per entry, in priority
// order: stored key equals the computed key, stored URL equals the event
// URL, or at least two of host/region/category agree after normalization.
// The first entry clearing any rung wins. The quorum rung can still conflate
// two same-day events at one venue whose hosts are recorded inconsistently
// upstream; the source data cannot disambiguate that case.
func matchEntry(entries []calendar.Entry, e event.Enriched, key string) *calendar.Entry {
	for i := range entries {
		fields := event.ParseDescription(entries[i].Description)
		if fields[event.LabelKey] == key {
			return &entries[i]
		}
		if u := fields[event.LabelURL]; u != "" && u == e.URL {
			return &entries[i]
		}
		if quorum(fields, e) >= 2 {
			return &entries[i]
		}
	}
	return nil
}

// quorum counts how many of host, region and category agree between a
// stored entry's metadata and the event, after normalization. A field only
// votes when both sides carry a value: hosts are empty for every degraded
// event, and letting "" == "" count would conflate all host-less events
// sharing a day and region.
func quorum(fields map[string]string, e event.Enriched) int {
	n := 0
	if fieldAgrees(fields[event.LabelHost], e.HostClub) {
		n++
	}
	if fieldAgrees(fields[event.LabelRegion], e.Region) {
		n++
	}
	if fieldAgrees(fields[event.LabelType], e.Category) {
		n++
	}
	return n
}

func fieldAgrees(stored, current string) bool {
	stored = event.Normalize(stored)
	current = event.Normalize(current)
	return stored != "" && stored == current
}
