package selection

import (
	"roomfront/internal/domain/availability"
	"roomfront/internal/domain/shared/daterange"
)

type State string

const (
	StateEmpty  State = "empty"
	StateSingle State = "single"
	StateRange  State = "range"
)

type OutcomeKind string

const (
	// OutcomeIgnored: the click landed on a reserved day.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeAnchored: a new SINGLE selection started at the clicked day.
	OutcomeAnchored OutcomeKind = "anchored"
	// OutcomeDeselected: the anchor was clicked again.
	OutcomeDeselected OutcomeKind = "deselected"
	// OutcomeRangeSelected: a RANGE was accepted and materialized.
	OutcomeRangeSelected OutcomeKind = "range_selected"
	// OutcomeConflict: the interior of the requested range hit an unavailable day.
	OutcomeConflict OutcomeKind = "conflict"
	// OutcomeUnblockRequested: a blocked day was clicked and awaits confirmation.
	OutcomeUnblockRequested OutcomeKind = "unblock_requested"
)

// Outcome describes what a single click did.
type Outcome struct {
	Kind       OutcomeKind
	Date       daterange.Day
	ConflictAt daterange.Day
}

// Selector is the host calendar's click state machine. The zero value is EMPTY.
type Selector struct {
	start          daterange.Day
	end            daterange.Day
	dateRange      []daterange.Day
	pendingUnblock daterange.Day
}

func (s *Selector) State() State {
	switch {
	case s.start.IsZero():
		return StateEmpty
	case s.start.Equal(s.end):
		return StateSingle
	default:
		return StateRange
	}
}

func (s *Selector) Start() (daterange.Day, bool) { return s.start, !s.start.IsZero() }

func (s *Selector) End() (daterange.Day, bool) { return s.end, !s.end.IsZero() }

// DateRange is the materialized submission set of an accepted RANGE.
func (s *Selector) DateRange() []daterange.Day {
	return append([]daterange.Day(nil), s.dateRange...)
}

func (s *Selector) PendingUnblock() (daterange.Day, bool) {
	return s.pendingUnblock, !s.pendingUnblock.IsZero()
}

// Reset returns to EMPTY and drops any pending unblock confirmation.
func (s *Selector) Reset() {
	*s = Selector{}
}

func (s *Selector) CancelUnblock() {
	s.pendingUnblock = daterange.Day{}
}

// Click applies one date-click against the room's current classification.
func (s *Selector) Click(d daterange.Day, snap availability.Snapshot) Outcome {
	if snap.IsReserved(d) {
		return Outcome{Kind: OutcomeIgnored, Date: d}
	}
	if snap.IsBlocked(d) {
		s.clearSelection()
		s.pendingUnblock = d
		return Outcome{Kind: OutcomeUnblockRequested, Date: d}
	}
	s.pendingUnblock = daterange.Day{}

	switch s.State() {
	case StateSingle:
		anchor := s.start
		switch {
		case d.Equal(anchor):
			s.clearSelection()
			return Outcome{Kind: OutcomeDeselected, Date: d}
		case d.After(anchor):
			if at, found := HasConflict(anchor, d, snap); found {
				s.clearSelection()
				return Outcome{Kind: OutcomeConflict, Date: d, ConflictAt: at}
			}
			s.end = d
			s.dateRange = Materialize(daterange.Range{Start: anchor, End: d}, snap)
			return Outcome{Kind: OutcomeRangeSelected, Date: d}
		}
	}
	s.anchor(d)
	return Outcome{Kind: OutcomeAnchored, Date: d}
}

func (s *Selector) anchor(d daterange.Day) {
	s.start = d
	s.end = d
	s.dateRange = nil
}

func (s *Selector) clearSelection() {
	s.start = daterange.Day{}
	s.end = daterange.Day{}
	s.dateRange = nil
}
