package event

import (
	"strings"
	"testing"
)

func sampleEnriched() Enriched {
	return Enriched{
		Listing: Listing{
			URL:      "https://events.example.org/events/42",
			Name:     "Spring Shoot",
			Region:   "Southern",
			Category: "Open",
		},
		StartDate: "2025-03-01",
		EndDate:   "2025-03-02",
		HostClub:  "Riverside Archery Club",
	}
}

func TestDescriptionFormat(t *testing.T) {
	key := "2025-03-01|riverside archery club|southern|open"
	got := Description(sampleEnriched(), key)

	want := strings.Join([]string{
		"Type: Open",
		"Event URL: https://events.example.org/events/42",
		"Host Club: Riverside Archery Club",
		"Region: Southern",
		"Event Key: " + key,
	}, "\n")

	if got != want {
		t.Errorf("Description =\n%s\nwant:\n%s", got, want)
	}
}

func TestParseDescription(t *testing.T) {
	key := "2025-03-01|riverside archery club|southern|open"
	fields := ParseDescription(Description(sampleEnriched(), key))

	if fields[LabelKey] != key {
		t.Errorf("parsed key = %q, want %q", fields[LabelKey], key)
	}
	// URLs contain colons; only the first one splits the line.
	if fields[LabelURL] != "https://events.example.org/events/42" {
		t.Errorf("parsed URL = %q", fields[LabelURL])
	}
	if fields[LabelHost] != "Riverside Archery Club" {
		t.Errorf("parsed host = %q", fields[LabelHost])
	}
}

func TestParseDescriptionTolerance(t *testing.T) {
	// Missing lines, reordered lines, and junk must not break parsing.
	text := "some free text without a colon\nRegion:   Southern  \nType: Open"
	fields := ParseDescription(text)

	if fields[LabelRegion] != "Southern" {
		t.Errorf("parsed region = %q, want trimmed value", fields[LabelRegion])
	}
	if fields[LabelType] != "Open" {
		t.Errorf("parsed type = %q", fields[LabelType])
	}
	if _, ok := fields[LabelKey]; ok {
		t.Error("absent label should not be present in the map")
	}
}
