// Package geo restricts stations to the region of interest using a coarse
// whole-degree coordinate-prefix heuristic, not a polygon test.
package geo

import (
	"strconv"
	"strings"

	providers "chargewatch/internal/providers/domain"
)

// Slovenia's bounding box, approximated by the integer degree prefixes.
var (
	acceptedLat = map[int]bool{45: true, 46: true, 47: true}
	acceptedLon = map[int]bool{13: true, 14: true, 15: true, 16: true, 17: true}
)

// Accept reports whether a raw "<lat>,<lon>" coordinate string falls inside
// the accepted window. Any parse failure (malformed coordinate, single-digit
// degree, non-numeric prefix) excludes the station; exclusion is a normal
// outcome, never an error.
func Accept(geo string) bool {
	halves := strings.SplitN(geo, ",", 2)
	if len(halves) != 2 {
		return false
	}
	lat, ok := degreePrefix(halves[0])
	if !ok {
		return false
	}
	lon, ok := degreePrefix(halves[1])
	if !ok {
		return false
	}
	return acceptedLat[lat] && acceptedLon[lon]
}

// Filter keeps only stations whose coordinate is accepted. It must run before
// identifier extraction so excluded stations never enter the diff.
func Filter(list []providers.Station) []providers.Station {
	out := make([]providers.Station, 0, len(list))
	for _, st := range list {
		if Accept(st.Geo) {
			out = append(out, st)
		}
	}
	return out
}

func degreePrefix(half string) (int, bool) {
	if len(half) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(half[:2])
	if err != nil {
		return 0, false
	}
	return n, true
}
