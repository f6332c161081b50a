package rooms

import (
	"errors"
	"fmt"
	"strings"

	"roomfront/internal/domain/availability"
	"roomfront/internal/domain/shared/daterange"
)

var (
	ErrRoomNotFound    = errors.New("rooms: room not found")
	ErrInvalidStay     = errors.New("rooms: check-out must be after check-in")
	ErrStayUnavailable = errors.New("rooms: stay overlaps unavailable dates")
	ErrGuestsInvalid   = errors.New("rooms: guests must be between 1 and the room limit")
	ErrTitleRequired   = errors.New("rooms: title is required")
	ErrPriceInvalid    = errors.New("rooms: day price must be positive")
)

// Room is a listing as the backend reports it. Reservations are only
// populated on host and detail reads.
type Room struct {
	ID           string
	HostID       string
	Title        string
	Description  string
	Address      string
	City         string
	DayPrice     int64
	MaxGuests    int
	Photos       []string
	Rating       float64
	Reservations []availability.Interval
}

// Snapshot classifies the room's reservations as of today.
func (r Room) Snapshot(today daterange.Day) availability.Snapshot {
	return availability.Classify(r.Reservations, today)
}

// Stay is a guest booking window: nights run from CheckIn up to the day before CheckOut.
type Stay struct {
	CheckIn  daterange.Day
	CheckOut daterange.Day
}

// ParseStay reads a YYYY-MM-DD check-in/check-out pair.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := daterange.ParseDay(checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := daterange.ParseDay(checkOut)
	if err != nil {
		return Stay{}, err
	}
	stay := Stay{CheckIn: in, CheckOut: out}
	return stay, stay.Validate()
}

func (s Stay) Validate() error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() || !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidStay
	}
	return nil
}

func (s Stay) Nights() int {
	if s.Validate() != nil {
		return 0
	}
	return s.CheckIn.DaysUntil(s.CheckOut)
}

// NightDays lists the occupied nights.
func (s Stay) NightDays() []daterange.Day {
	if s.Validate() != nil {
		return nil
	}
	return daterange.Range{Start: s.CheckIn, End: s.CheckOut.AddDays(-1)}.Days()
}

// CheckStay verifies a stay fits the room: valid window, guest limit, and no
// night in blocked ∪ reserved or in the past.
func (r Room) CheckStay(stay Stay, guests int, snap availability.Snapshot) error {
	if err := stay.Validate(); err != nil {
		return err
	}
	if guests < 1 || (r.MaxGuests > 0 && guests > r.MaxGuests) {
		return ErrGuestsInvalid
	}
	if stay.CheckIn.Before(snap.Today) {
		return fmt.Errorf("%w: check-in %s is in the past", ErrStayUnavailable, stay.CheckIn)
	}
	for _, night := range stay.NightDays() {
		if snap.Unavailable(night) {
			return fmt.Errorf("%w: %s", ErrStayUnavailable, night)
		}
	}
	return nil
}

// SearchFilter narrows the public listing search.
type SearchFilter struct {
	City     string
	CheckIn  daterange.Day
	CheckOut daterange.Day
	Guests   int
}

// Reservation is a guest's booking as returned by the backend.
type Reservation struct {
	ID         string
	RoomID     string
	RoomTitle  string
	CheckIn    daterange.Day
	CheckOut   daterange.Day
	Guests     int
	Status     availability.Status
	TotalPrice int64
	PaymentID  string
}

// ReservationRequest is what a guest submits to book a room.
type ReservationRequest struct {
	RoomID    string
	Stay      Stay
	Guests    int
	PaymentID string
}

// Draft is a new room registered by a host.
type Draft struct {
	Title       string
	Description string
	Address     string
	City        string
	DayPrice    int64
	MaxGuests   int
	Photos      []string
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if d.DayPrice <= 0 {
		return ErrPriceInvalid
	}
	if d.MaxGuests < 1 {
		return ErrGuestsInvalid
	}
	return nil
}
