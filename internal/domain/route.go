package domain

import "strings"

// routeSeparator joins stops in the delimited sheet and export form.
const routeSeparator = ", "

// FleetChangeMarker is the sentinel route of a synthesized fleet-change event.
const FleetChangeMarker = "[fleet change]"

// Route is the ordered list of stops visited on a trip.
// A Route built through NewRoute or ParseRoute never holds empty names or
// duplicates; the first occurrence of a stop fixes its position.
type Route []string

// NewRoute builds a Route from stop names, trimming whitespace, dropping
// empty names and suppressing repeats.
func NewRoute(stops ...string) Route {
	seen := make(map[string]struct{}, len(stops))
	out := make(Route, 0, len(stops))
	for _, s := range stops {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseRoute splits the comma-delimited form stored in sheets.
func ParseRoute(s string) Route {
	return NewRoute(strings.Split(s, ",")...)
}

// String joins the stops with ", ".
func (r Route) String() string {
	return strings.Join(r, routeSeparator)
}

// IsFleetChange reports whether r is the fleet-change sentinel route.
func (r Route) IsFleetChange() bool {
	return len(r) == 1 && r[0] == FleetChangeMarker
}
