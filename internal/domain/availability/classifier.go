package availability

import (
	"strings"

	"roomfront/internal/domain/shared/daterange"
)

// Status is the reservation status reported by the backend.
type Status string

const (
	StatusBlocked  Status = "BLOCKED"
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusCanceled Status = "CANCELED"
)

// Interval is one reservation record of a room. Both bounds are inclusive.
type Interval struct {
	CheckIn  daterange.Day
	CheckOut daterange.Day
	Status   Status
}

// Counted reports whether the interval contributes to availability at all.
func (i Interval) Counted() bool {
	return strings.TrimSpace(string(i.Status)) != ""
}

func (i Interval) IsBlock() bool {
	return Status(strings.ToUpper(strings.TrimSpace(string(i.Status)))) == StatusBlocked
}

// Contains is the day-granularity containment test used when materializing a
// selection. It ignores status.
func (i Interval) Contains(d daterange.Day) bool {
	if i.CheckIn.IsZero() || i.CheckOut.IsZero() {
		return false
	}
	return !d.Before(i.CheckIn) && !d.After(i.CheckOut)
}

func (i Interval) days() []daterange.Day {
	return daterange.Range{Start: i.CheckIn, End: i.CheckOut}.Days()
}

// Snapshot is the classification of one room's reservation list on a given day.
type Snapshot struct {
	Today     daterange.Day
	Blocked   daterange.Set
	Reserved  daterange.Set
	Intervals []Interval
}

// Classify partitions every future day covered by a counted interval into
// Blocked or Reserved. A day covered by both resolves to Reserved.
func Classify(intervals []Interval, today daterange.Day) Snapshot {
	snap := Snapshot{
		Today:     today,
		Blocked:   daterange.NewSet(),
		Reserved:  daterange.NewSet(),
		Intervals: append([]Interval(nil), intervals...),
	}
	for _, iv := range intervals {
		if !iv.Counted() {
			continue
		}
		target := snap.Reserved
		if iv.IsBlock() {
			target = snap.Blocked
		}
		for _, d := range iv.days() {
			if d.Before(today) {
				continue
			}
			target.Add(d)
		}
	}
	for key := range snap.Reserved {
		delete(snap.Blocked, key)
	}
	return snap
}

func (s Snapshot) IsBlocked(d daterange.Day) bool { return s.Blocked.Has(d) }

func (s Snapshot) IsReserved(d daterange.Day) bool { return s.Reserved.Has(d) }

// Unavailable reports membership in blocked ∪ reserved.
func (s Snapshot) Unavailable(d daterange.Day) bool {
	return s.Blocked.Has(d) || s.Reserved.Has(d)
}

// Occupied applies the stricter containment test against every raw interval,
// whatever its status and whether or not the day is in the past.
func (s Snapshot) Occupied(d daterange.Day) bool {
	for _, iv := range s.Intervals {
		if iv.Contains(d) {
			return true
		}
	}
	return false
}

// UnavailableKeys merges both sets for guest-facing views.
func (s Snapshot) UnavailableKeys() []string {
	merged := daterange.NewSet()
	for k := range s.Blocked {
		merged[k] = struct{}{}
	}
	for k := range s.Reserved {
		merged[k] = struct{}{}
	}
	return merged.Sorted()
}
