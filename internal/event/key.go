package event

import (
	"strings"
	"time"
)

// KeyDelimiter joins the four normalized key fields.
const KeyDelimiter = "|"

// dayFormat renders a key's calendar-day component.
const dayFormat = "2006-01-02"

// Normalize lowercases s and collapses internal whitespace runs to single
// spaces, trimming the ends.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Key derives the deterministic identity string for an event whose start
// date has already been resolved to a calendar day. Two events describing
// the same real-world occurrence on the same day with the same host, region
// and category produce an identical key regardless of name or URL.
func Key(day time.Time, host, region, category string) string {
	return strings.Join([]string{
		day.Format(dayFormat),
		Normalize(host),
		Normalize(region),
		Normalize(category),
	}, KeyDelimiter)
}
