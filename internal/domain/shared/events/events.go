package events

import "time"

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// ChangeKind names what changed on the backend.
type ChangeKind string

const (
	ChangeCalendarBlocked   ChangeKind = "calendar.blocked"
	ChangeCalendarUnblocked ChangeKind = "calendar.unblocked"
	ChangeReservationMade   ChangeKind = "reservation.requested"
	ChangeRoomRegistered    ChangeKind = "room.registered"
	ChangePaymentPaid       ChangeKind = "payment.paid"
)

// DataChanged tells every room and availability view that its server data is
// stale. Origin is empty for changes made through this instance.
type DataChanged struct {
	Kind   ChangeKind `json:"kind"`
	RoomID string     `json:"room_id"`
	HostID string     `json:"host_id,omitempty"`
	Dates  []string   `json:"dates,omitempty"`
	At     time.Time  `json:"at"`
	Origin string     `json:"-"`
}

func (e DataChanged) EventName() string     { return string(e.Kind) }
func (e DataChanged) AggregateID() string   { return e.RoomID }
func (e DataChanged) OccurredAt() time.Time { return e.At }

// Local reports whether the change was made by this instance.
func (e DataChanged) Local() bool { return e.Origin == "" }
