package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Source locates the events listing across an ordered list of base-URL and
// path combinations, tried in sequence until one succeeds.
type Source struct {
	fetcher  *Fetcher
	baseURLs []string
	paths    []string
}

// NewSource creates a Source over the given candidates.
func NewSource(fetcher *Fetcher, baseURLs, paths []string) *Source {
	return &Source{fetcher: fetcher, baseURLs: baseURLs, paths: paths}
}

// ListingPage is a successfully fetched listing body together with the base
// URL that served it, needed later to resolve relative event links.
type ListingPage struct {
	Body    []byte
	BaseURL string
	URL     string
}

// Attempt records one failed candidate URL and why it failed.
type Attempt struct {
	URL string
	Err error
}

// SourceError is the fatal failure raised when every candidate URL has been
// exhausted. Its message enumerates each attempted URL with its reason.
type SourceError struct {
	Attempts []Attempt
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString("listing unreachable on all sources:")
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.URL, a.Err)
	}
	return b.String()
}

// FetchListing tries each base-URL/path combination in order and returns the
// first page that fetches successfully. Failure of every candidate is fatal
// for the run.
func (s *Source) FetchListing(ctx context.Context) (*ListingPage, error) {
	var failed []Attempt
	for _, base := range s.baseURLs {
		for _, path := range s.paths {
			url := JoinURL(base, path)
			body, err := s.fetcher.Get(ctx, url)
			if err != nil {
				slog.Warn("listing source failed", "url", url, "error", err)
				failed = append(failed, Attempt{URL: url, Err: err})
				continue
			}
			return &ListingPage{Body: body, BaseURL: strings.TrimSuffix(base, "/"), URL: url}, nil
		}
	}
	return nil, &SourceError{Attempts: failed}
}
