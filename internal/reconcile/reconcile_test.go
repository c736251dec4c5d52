package reconcile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rkeeler/archery-sync/internal/calendar"
	"github.com/rkeeler/archery-sync/internal/event"
)

func springShoot() event.Enriched {
	return event.Merge(event.Listing{
		URL:         "https://events.example.org/events/42",
		Name:        "Spring Shoot",
		DisplayDate: "2025-03-01",
		Region:      "Southern",
		Category:    "Open",
	}, event.Details{
		StartDate: "2025-03-01",
		EndDate:   "2025-03-02",
		HostClub:  "Riverside Archery Club",
	})
}

func TestReconcileCreatesFullDayEntry(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)

	res, err := r.Reconcile(context.Background(), springShoot())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Created {
		t.Fatalf("outcome = %s, want created", res.Outcome)
	}

	e := res.Entry
	if e.Title != "Riverside: Spring Shoot" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.Location != "Riverside Archery Club" {
		t.Errorf("Location = %q", e.Location)
	}

	// Inclusive source end 2025-03-02 renders as an exclusive end one day past.
	wantStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	if !e.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", e.Start, wantStart)
	}
	if !e.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", e.End, wantEnd)
	}

	if !strings.Contains(e.Description, "Event Key: 2025-03-01|riverside archery club|southern|open") {
		t.Errorf("Description missing key:\n%s", e.Description)
	}
}

func TestReconcileIdempotence(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	if res, err := r.Reconcile(ctx, springShoot()); err != nil || res.Outcome != Created {
		t.Fatalf("first run: outcome=%v err=%v", res.Outcome, err)
	}

	// Unchanged source data on the second run must be a no-op.
	res, err := r.Reconcile(ctx, springShoot())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.Outcome != Unchanged {
		t.Errorf("second run outcome = %s, want unchanged", res.Outcome)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestReconcileUpdatesOnFieldChange(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, springShoot()); err != nil {
		t.Fatal(err)
	}

	// Same identity, longer span: key still matches, fields differ.
	changed := springShoot()
	changed.EndDate = "2025-03-03"
	res, err := r.Reconcile(ctx, changed)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Updated {
		t.Fatalf("outcome = %s, want updated", res.Outcome)
	}
	wantEnd := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	if !res.Entry.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", res.Entry.End, wantEnd)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1 (updated in place)", store.Len())
	}
}

func TestReconcileMatchesByURLWhenKeyDrifts(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, springShoot()); err != nil {
		t.Fatal(err)
	}

	// Host recorded differently upstream changes the key, but the embedded
	// source URL still identifies the entry.
	drifted := springShoot()
	drifted.HostClub = "Riverside Bowmen"
	drifted.Region = "South West"
	res, err := r.Reconcile(ctx, drifted)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Updated {
		t.Errorf("outcome = %s, want updated via URL match", res.Outcome)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestReconcileQuorumMatch(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	// A pre-existing entry written by an older run: no key line, stale URL.
	_, err := store.Create(ctx, calendar.Entry{
		Title:    "Riverside: Spring Shoot",
		Location: "Riverside Archery Club",
		Description: strings.Join([]string{
			"Type: Open",
			"Event URL: https://old.example.org/e/1",
			"Host Club: Riverside Archery Club",
			"Region: Southern",
		}, "\n"),
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	// Host, region and category all agree, so the quorum rung matches and the
	// entry is rewritten rather than duplicated.
	res, err := r.Reconcile(ctx, springShoot())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Updated {
		t.Errorf("outcome = %s, want updated via quorum match", res.Outcome)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestReconcileQuorumDoesNotOvermatch(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	// Same region only; host and category both differ. One agreeing field
	// must not be treated as the same event.
	_, err := store.Create(ctx, calendar.Entry{
		Title:    "Northgate: Clout Championship",
		Location: "Northgate Bowmen",
		Description: strings.Join([]string{
			"Type: Clout",
			"Event URL: https://events.example.org/events/7",
			"Host Club: Northgate Bowmen",
			"Region: Southern",
		}, "\n"),
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Reconcile(ctx, springShoot())
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Created {
		t.Errorf("outcome = %s, want created (no quorum)", res.Outcome)
	}
	if store.Len() != 2 {
		t.Errorf("store has %d entries, want 2", store.Len())
	}
}

func TestReconcileHostlessEventsStayDistinct(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)
	ctx := context.Background()

	// Two events whose detail pages were unreachable: both host-less, on the
	// same day in the same region, differing in category and URL. An empty
	// host on both sides must not vote toward the quorum, or the second
	// event would overwrite the first's entry.
	hostless := func(url, name, category string) event.Enriched {
		return event.Merge(event.Listing{
			URL:         url,
			Name:        name,
			DisplayDate: "2025-03-01",
			Region:      "Southern",
			Category:    category,
		}, event.Details{})
	}
	a := hostless("https://events.example.org/events/50", "Open Shoot", "Open")
	b := hostless("https://events.example.org/events/51", "Clout Shoot", "Clout")

	resA, err := r.Reconcile(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	resB, err := r.Reconcile(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if resA.Outcome != Created || resB.Outcome != Created {
		t.Errorf("first run outcomes = %s/%s, want created/created", resA.Outcome, resB.Outcome)
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d entries, want 2", store.Len())
	}

	// Unchanged source data converges on the second run.
	resA, err = r.Reconcile(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	resB, err = r.Reconcile(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if resA.Outcome != Unchanged || resB.Outcome != Unchanged {
		t.Errorf("second run outcomes = %s/%s, want unchanged/unchanged", resA.Outcome, resB.Outcome)
	}
	if store.Len() != 2 {
		t.Errorf("store has %d entries after second run, want 2", store.Len())
	}
}

func TestReconcileSkipsUnparseableStartDate(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)

	e := springShoot()
	e.StartDate = "sometime in spring"
	res, err := r.Reconcile(context.Background(), e)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Skipped {
		t.Errorf("outcome = %s, want skipped", res.Outcome)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries, want 0", store.Len())
	}
}

func TestReconcileEndBoundaryAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	store := calendar.NewMemory()
	r := New(store, loc)

	// The clocks spring forward on 2025-03-09; the exclusive end must still
	// land on midnight of the following day, not 01:00.
	e := event.Merge(event.Listing{
		URL:         "https://events.example.org/events/77",
		Name:        "Indoor Weekend",
		DisplayDate: "2025-03-08",
		Region:      "Southern",
		Category:    "Open",
	}, event.Details{StartDate: "2025-03-08", EndDate: "2025-03-09"})

	res, err := r.Reconcile(context.Background(), e)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	wantEnd := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	if !res.Entry.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", res.Entry.End, wantEnd)
	}
	if h, m, s := res.Entry.End.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("End clock = %02d:%02d:%02d, want midnight", h, m, s)
	}
}

func TestReconcileSingleDayEvent(t *testing.T) {
	store := calendar.NewMemory()
	r := New(store, time.UTC)

	e := event.Merge(event.Listing{
		URL:         "https://events.example.org/events/9",
		Name:        "Clout Day",
		DisplayDate: "2025-05-10",
		Region:      "Midlands",
		Category:    "Clout",
	}, event.Details{})

	res, err := r.Reconcile(context.Background(), e)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if res.Outcome != Created {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	// End date fell back to the start date, so the entry spans exactly one day.
	if got := res.Entry.End.Sub(res.Entry.Start); got != 24*time.Hour {
		t.Errorf("span = %v, want 24h", got)
	}
	// No detail page reachable: location is the empty host, never a sentinel.
	if res.Entry.Location != "" {
		t.Errorf("Location = %q, want empty", res.Entry.Location)
	}
}
