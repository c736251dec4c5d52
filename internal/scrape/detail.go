package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rkeeler/archery-sync/internal/event"
	"github.com/rkeeler/archery-sync/internal/fetch"
)

// Detail page field labels.
const (
	labelStartDate = "Start Date"
	labelEndDate   = "End Date"
	labelHostClub  = "Host Club"
)

// Enricher fetches per-event detail pages and extracts the authoritative
// start date, end date, and host club.
type Enricher struct {
	fetcher *fetch.Fetcher
}

// NewEnricher creates an Enricher backed by the given fetcher.
func NewEnricher(fetcher *fetch.Fetcher) *Enricher {
	return &Enricher{fetcher: fetcher}
}

// EnrichOne fetches the detail page at url and extracts its labeled fields.
// Each field is independently optional: a missing end date defaults to the
// start date and a missing host club to the empty string. A fetch failure is
// returned as a *fetch.Error so the caller can degrade that single event to
// listing-level data instead of aborting the batch.
func (e *Enricher) EnrichOne(ctx context.Context, url string) (event.Details, error) {
	body, err := e.fetcher.Get(ctx, url)
	if err != nil {
		return event.Details{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return event.Details{}, fmt.Errorf("parsing detail HTML: %w", err)
	}

	d := event.Details{
		StartDate: labeledField(doc, labelStartDate),
		EndDate:   labeledField(doc, labelEndDate),
		HostClub:  labeledField(doc, labelHostClub),
	}
	if d.EndDate == "" {
		d.EndDate = d.StartDate
	}
	return d, nil
}

// labeledField finds the table cell whose text equals label and returns the
// trimmed text of the cell that follows it, or "" when no such pair exists.
func labeledField(doc *goquery.Document, label string) string {
	var value string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("th, td")
		for i := 0; i < cells.Length()-1; i++ {
			if strings.TrimSpace(cells.Eq(i).Text()) == label {
				value = strings.TrimSpace(cells.Eq(i + 1).Text())
				return false
			}
		}
		return true
	})
	return value
}
