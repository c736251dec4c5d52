package event

import (
	"regexp"
	"strings"
)

// leagueCategory events keep the bare event name as their title.
const leagueCategory = "League"

var clubNoise = regexp.MustCompile(`(?i)archery club|archers`)

// Title derives the calendar entry title for an event. Hosted events are
// prefixed with up to two words of the host club name, with the generic
// "Archery Club"/"Archers" suffixes stripped; league and host-less events
// use the event name alone.
func Title(e Enriched) string {
	if e.HostClub == "" || e.Category == leagueCategory {
		return e.Name
	}

	cleaned := clubNoise.ReplaceAllString(e.HostClub, "")
	words := strings.Fields(cleaned)
	switch {
	case len(words) >= 2:
		return words[0] + " " + words[1] + ": " + e.Name
	case len(words) == 1:
		return words[0] + ": " + e.Name
	default:
		return e.Name
	}
}
