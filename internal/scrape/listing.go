package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rkeeler/archery-sync/internal/event"
	"github.com/rkeeler/archery-sync/internal/fetch"
)

// ExtractListing parses the listing page body into coarse event records.
// Each qualifying row has a linked name cell followed by three plain cells
// (display date, region, category); rows not matching that shape are skipped
// without error. Relative hrefs are resolved against baseURL. The function
// is pure: the same input always yields the same records in the same order.
func ExtractListing(body []byte, baseURL string) ([]event.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	var records []event.Listing
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 4 {
			return
		}

		link := cells.Eq(0).Find("a").First()
		href, ok := link.Attr("href")
		name := strings.TrimSpace(link.Text())
		if !ok || strings.TrimSpace(href) == "" || name == "" {
			return
		}

		// The display date is the guaranteed start-date fallback; a row
		// without one cannot be reconciled.
		displayDate := strings.TrimSpace(cells.Eq(1).Text())
		if displayDate == "" {
			return
		}

		records = append(records, event.Listing{
			URL:         fetch.JoinURL(baseURL, strings.TrimSpace(href)),
			Name:        name,
			DisplayDate: displayDate,
			Region:      strings.TrimSpace(cells.Eq(2).Text()),
			Category:    strings.TrimSpace(cells.Eq(3).Text()),
		})
	})

	return records, nil
}
