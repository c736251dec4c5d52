// Package scrape extracts structured event records from the listing and
// detail pages. The extraction targets one known, fixed table layout and
// degrades by skipping fragments that do not match it.
package scrape
