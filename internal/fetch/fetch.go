// Package fetch performs resilient HTTP retrieval of the events listing and
// per-event detail pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fetcher performs GET requests with bounded retries and exponential backoff.
// Non-2xx responses and transport errors are treated uniformly as retryable.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	maxAttempts    int
	initialBackoff time.Duration
}

// Options configures a Fetcher. Zero values fall back to the defaults used
// throughout the pipeline.
type Options struct {
	UserAgent      string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	return &Fetcher{
		client:         &http.Client{Timeout: opts.Timeout},
		userAgent:      opts.UserAgent,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
	}
}

// Error is a terminal fetch failure raised after all attempts are exhausted.
// It carries the last observed error.
type Error struct {
	URL      string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s: giving up after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Get fetches url, retrying transient failures up to the attempt cap with
// delays of initialBackoff x 2^attempt between attempts. On success the
// response body is returned in full.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	attempt := 0
	op := func() error {
		attempt++
		err := f.tryOnce(ctx, url, &body)
		if err != nil {
			slog.Debug("fetch attempt failed",
				"url", url, "attempt", attempt, "max_attempts", f.maxAttempts, "error", err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	bo.MaxInterval = time.Hour

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.maxAttempts-1)), ctx))
	if err != nil {
		return nil, &Error{URL: url, Attempts: attempt, Err: err}
	}
	return body, nil
}

// tryOnce performs a single request. Status codes outside [200,300) are
// returned as errors rather than raised mid-flight so they stay inspectable.
func (f *Fetcher) tryOnce(ctx context.Context, url string, out *[]byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// A malformed URL will not improve with retrying.
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	*out = data
	return nil
}

// JoinURL resolves a possibly-relative href against a base URL. Absolute
// URLs (scheme prefix present) pass through unchanged.
func JoinURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
