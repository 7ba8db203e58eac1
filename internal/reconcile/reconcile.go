// Package reconcile computes which station identifiers are newly observed
// compared to the stored baseline. All functions are pure.
package reconcile

import (
	"sort"

	providers "chargewatch/internal/providers/domain"
)

// IDSet extracts the identifier set from a canonical station list. Duplicate
// ids (e.g. from unioned query windows) collapse naturally.
func IDSet(list []providers.Station) map[int64]struct{} {
	set := make(map[int64]struct{}, len(list))
	for _, st := range list {
		set[st.ID] = struct{}{}
	}
	return set
}

// Diff returns current \ stored: the ids observed now that are not yet known.
// An empty current set yields an empty result (treated as "no data", not as
// "all stations removed"); an empty stored set yields current unchanged.
func Diff(current, stored map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{})
	for id := range current {
		if _, ok := stored[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// Removed returns stored \ current. Diagnostic only: the result must never
// drive deletion of persisted records.
func Removed(current, stored map[int64]struct{}) map[int64]struct{} {
	return Diff(stored, current)
}

// SortedIDs returns the set's ids in ascending order, the explicit ordering
// used for logs and batch-request construction.
func SortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
