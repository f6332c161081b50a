package selection

import (
	"roomfront/internal/domain/availability"
	"roomfront/internal/domain/shared/daterange"
)

// HasConflict scans the open interval (from, to) and returns the first day in
// blocked ∪ reserved. Endpoints are never checked.
func HasConflict(from, to daterange.Day, snap availability.Snapshot) (daterange.Day, bool) {
	for d := from.AddDays(1); d.Before(to); d = d.AddDays(1) {
		if snap.Unavailable(d) {
			return d, true
		}
	}
	return daterange.Day{}, false
}

// Materialize walks r inclusive and keeps only the days no server interval
// contains. The result can have gaps relative to r.
func Materialize(r daterange.Range, snap availability.Snapshot) []daterange.Day {
	days := r.Days()
	out := make([]daterange.Day, 0, len(days))
	for _, d := range days {
		if snap.Occupied(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}
