package dto

import (
	"roomfront/internal/domain/availability"
	domainrooms "roomfront/internal/domain/rooms"
)

type Room struct {
	ID          string   `json:"id"`
	HostID      string   `json:"host_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	DayPrice    int64    `json:"day_price"`
	MaxGuests   int      `json:"max_guests"`
	Photos      []string `json:"photos"`
	Rating      float64  `json:"rating"`
}

// RoomDetail adds the days guests cannot book.
type RoomDetail struct {
	Room
	Today       string   `json:"today"`
	Unavailable []string `json:"unavailable"`
}

type Reservation struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	RoomTitle  string `json:"room_title,omitempty"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	Status     string `json:"status"`
	TotalPrice int64  `json:"total_price"`
	PaymentID  string `json:"payment_id,omitempty"`
}

func MapRoom(r domainrooms.Room) Room {
	photos := r.Photos
	if photos == nil {
		photos = []string{}
	}
	return Room{
		ID:          r.ID,
		HostID:      r.HostID,
		Title:       r.Title,
		Description: r.Description,
		Address:     r.Address,
		City:        r.City,
		DayPrice:    r.DayPrice,
		MaxGuests:   r.MaxGuests,
		Photos:      photos,
		Rating:      r.Rating,
	}
}

func MapRooms(list []domainrooms.Room) []Room {
	out := make([]Room, 0, len(list))
	for _, r := range list {
		out = append(out, MapRoom(r))
	}
	return out
}

func MapRoomDetail(r domainrooms.Room, snap availability.Snapshot) RoomDetail {
	return RoomDetail{
		Room:        MapRoom(r),
		Today:       snap.Today.Key(),
		Unavailable: snap.UnavailableKeys(),
	}
}

func MapReservation(r domainrooms.Reservation) Reservation {
	return Reservation{
		ID:         r.ID,
		RoomID:     r.RoomID,
		RoomTitle:  r.RoomTitle,
		CheckIn:    r.CheckIn.Key(),
		CheckOut:   r.CheckOut.Key(),
		Guests:     r.Guests,
		Status:     string(r.Status),
		TotalPrice: r.TotalPrice,
		PaymentID:  r.PaymentID,
	}
}

func MapReservations(list []domainrooms.Reservation) []Reservation {
	out := make([]Reservation, 0, len(list))
	for _, r := range list {
		out = append(out, MapReservation(r))
	}
	return out
}
