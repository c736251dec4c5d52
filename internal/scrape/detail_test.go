package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rkeeler/archery-sync/internal/fetch"
)

func testEnricher() *Enricher {
	return NewEnricher(fetch.New(fetch.Options{MaxAttempts: 2, InitialBackoff: time.Millisecond}))
}

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnrichOne(t *testing.T) {
	srv := serveHTML(t, `<html><body><table>
		<tr><th>Start Date</th><td>2025-03-01</td></tr>
		<tr><th>End Date</th><td>2025-03-02</td></tr>
		<tr><th>Host Club</th><td>Riverside Archery Club</td></tr>
		<tr><th>Entry Fee</th><td>£12</td></tr>
	</table></body></html>`)

	d, err := testEnricher().EnrichOne(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("EnrichOne failed: %v", err)
	}
	if d.StartDate != "2025-03-01" {
		t.Errorf("StartDate = %q", d.StartDate)
	}
	if d.EndDate != "2025-03-02" {
		t.Errorf("EndDate = %q", d.EndDate)
	}
	if d.HostClub != "Riverside Archery Club" {
		t.Errorf("HostClub = %q", d.HostClub)
	}
}

func TestEnrichOneDefaults(t *testing.T) {
	t.Run("missing end date defaults to start", func(t *testing.T) {
		srv := serveHTML(t, `<table><tr><td>Start Date</td><td>2025-03-01</td></tr></table>`)
		d, err := testEnricher().EnrichOne(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("EnrichOne failed: %v", err)
		}
		if d.EndDate != "2025-03-01" {
			t.Errorf("EndDate = %q, want start date", d.EndDate)
		}
		if d.HostClub != "" {
			t.Errorf("HostClub = %q, want empty", d.HostClub)
		}
	})

	t.Run("no labeled fields at all", func(t *testing.T) {
		srv := serveHTML(t, `<p>event page under construction</p>`)
		d, err := testEnricher().EnrichOne(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("EnrichOne failed: %v", err)
		}
		if d.StartDate != "" || d.EndDate != "" || d.HostClub != "" {
			t.Errorf("details = %+v, want all empty", d)
		}
	})
}

func TestEnrichOneFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testEnricher().EnrichOne(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T, want *fetch.Error so the caller can degrade", err)
	}
}
