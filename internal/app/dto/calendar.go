package dto

import (
	"roomfront/internal/domain/availability"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/selection"
	"roomfront/internal/domain/shared/daterange"
)

type Selection struct {
	State     string   `json:"state"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
	DateRange []string `json:"date_range"`
}

// Calendar is the host calendar view of one room.
type Calendar struct {
	RoomID         string    `json:"room_id"`
	RoomTitle      string    `json:"room_title"`
	DayPrice       int64     `json:"day_price"`
	Today          string    `json:"today"`
	Blocked        []string  `json:"blocked"`
	Reserved       []string  `json:"reserved"`
	Selection      Selection `json:"selection"`
	PendingUnblock string    `json:"pending_unblock,omitempty"`
}

type ClickResult struct {
	Outcome    string   `json:"outcome"`
	Date       string   `json:"date"`
	ConflictAt string   `json:"conflict_at,omitempty"`
	Notice     string   `json:"notice,omitempty"`
	Calendar   Calendar `json:"calendar"`
}

type BlockResult struct {
	RoomID string   `json:"room_id"`
	Dates  []string `json:"dates"`
}

type UnblockResult struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
}

// MapCalendar projects a room snapshot and the session's selector.
func MapCalendar(room domainrooms.Room, snap availability.Snapshot, sel *selection.Selector) Calendar {
	cal := Calendar{
		RoomID:    room.ID,
		RoomTitle: room.Title,
		DayPrice:  room.DayPrice,
		Today:     snap.Today.Key(),
		Blocked:   snap.Blocked.Sorted(),
		Reserved:  snap.Reserved.Sorted(),
		Selection: Selection{State: string(selection.StateEmpty), DateRange: []string{}},
	}
	if sel == nil {
		return cal
	}
	cal.Selection.State = string(sel.State())
	if start, ok := sel.Start(); ok {
		cal.Selection.Start = start.Key()
	}
	if end, ok := sel.End(); ok {
		cal.Selection.End = end.Key()
	}
	if keys := daterange.Keys(sel.DateRange()); len(keys) > 0 {
		cal.Selection.DateRange = keys
	}
	if d, ok := sel.PendingUnblock(); ok {
		cal.PendingUnblock = d.Key()
	}
	return cal
}
