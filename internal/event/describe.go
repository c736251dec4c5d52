package event

import "strings"

// Description labels. The rendered description doubles as the persisted
// identity record read back during matching, so these labels and their order
// form a de facto wire format.
const (
	LabelType   = "Type"
	LabelURL    = "Event URL"
	LabelHost   = "Host Club"
	LabelRegion = "Region"
	LabelKey    = "Event Key"
)

// Description renders the canonical multi-line description for an event and
// its computed key.
func Description(e Enriched, key string) string {
	lines := []string{
		LabelType + ": " + e.Category,
		LabelURL + ": " + e.URL,
		LabelHost + ": " + e.HostClub,
		LabelRegion + ": " + e.Region,
		LabelKey + ": " + key,
	}
	return strings.Join(lines, "\n")
}

// ParseDescription reads a stored description back into a label-to-value
// mapping. Each line is split on its first colon with both sides trimmed;
// lines without a colon are ignored. Consumers must look fields up by label,
// not line position, to tolerate missing lines.
func ParseDescription(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(label)] = strings.TrimSpace(value)
	}
	return fields
}
