package event

// Listing is one coarse event record extracted from the listing page.
// All string fields are trimmed and URL is absolute.
type Listing struct {
	URL         string
	Name        string
	DisplayDate string
	Region      string
	Category    string
}

// Details holds the fields extracted from an event's detail page. Dates are
// free-form strings as found in the source markup; the empty string marks an
// absent field.
type Details struct {
	StartDate string
	EndDate   string
	HostClub  string
}

// Enriched is the canonical unit passed to identity derivation and
// reconciliation: a Listing merged with its Details under the fallback rules.
type Enriched struct {
	Listing
	StartDate string
	EndDate   string
	HostClub  string
}

// Merge combines a listing record with its detail fields. The listing's
// display date is the guaranteed fallback for the start date, the resolved
// start date is the fallback for the end date, and an absent host club
// becomes the empty string. StartDate is never empty after merging.
func Merge(l Listing, d Details) Enriched {
	start := d.StartDate
	if start == "" {
		start = l.DisplayDate
	}
	end := d.EndDate
	if end == "" {
		end = start
	}
	return Enriched{
		Listing:   l,
		StartDate: start,
		EndDate:   end,
		HostClub:  d.HostClub,
	}
}
