package backendapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"roomfront/internal/domain/availability"
	domainblocks "roomfront/internal/domain/blocks"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type reservationWire struct {
	ID           flexID `json:"id"`
	RoomID       flexID `json:"room_id"`
	RoomTitle    string `json:"room_title"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Status       string `json:"status"`
	Guests       int    `json:"guests"`
	TotalPrice   int64  `json:"total_price"`
	PaymentID    string `json:"payment_id"`
}

type roomWire struct {
	ID           flexID            `json:"id"`
	HostID       flexID            `json:"hostId"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Address      string            `json:"address"`
	City         string            `json:"city"`
	DayPrice     int64             `json:"dayPrice"`
	MaxGuests    int               `json:"maxGuests"`
	Photos       []string          `json:"photos"`
	Rating       float64           `json:"rating"`
	Reservations []reservationWire `json:"reservations"`
}

type scheduleWire struct {
	Date        string `json:"date"`
	DayPrice    int64  `json:"dayPrice"`
	IsAvailable bool   `json:"isAvailable"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
	IsBlocked   string `json:"isBlocked"`
}

type bulkBlockRequest struct {
	Schedules []scheduleWire `json:"schedules"`
}

type unblockRequest struct {
	Date string `json:"date"`
}

// successResponse is the `{success}` envelope of the block endpoints. A
// missing field counts as success.
type successResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type reservationRequest struct {
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Guests       int    `json:"guests"`
	PaymentID    string `json:"payment_id,omitempty"`
}

type roomDraftRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	DayPrice    int64    `json:"dayPrice"`
	MaxGuests   int      `json:"maxGuests"`
	Photos      []string `json:"photos"`
}

type virtualAccountWire struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountHolder string `json:"accountHolder"`
	DueDate       string `json:"dueDate"`
}

type verifyResponse struct {
	PaymentID      string              `json:"paymentId"`
	Status         string              `json:"status"`
	RoomID         flexID              `json:"roomId"`
	Amount         int64               `json:"amount"`
	FailReason     string              `json:"failReason"`
	VirtualAccount *virtualAccountWire `json:"virtualAccount"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	User        struct {
		ID     flexID `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		IsHost bool   `json:"isHost"`
	} `json:"user"`
}

func toSchedules(sub domainblocks.Submission) []scheduleWire {
	out := make([]scheduleWire, 0, len(sub.Schedules))
	for _, s := range sub.Schedules {
		blocked := "false"
		if s.IsBlocked {
			blocked = "true"
		}
		out = append(out, scheduleWire{
			Date:        s.Date.Key(),
			DayPrice:    s.DayPrice,
			IsAvailable: s.IsAvailable,
			Description: s.Description,
			Reason:      s.Reason,
			IsBlocked:   blocked,
		})
	}
	return out
}

// toRoom maps a room. Reservations with unreadable dates are skipped.
func toRoom(w roomWire, logger *slog.Logger) domainrooms.Room {
	room := domainrooms.Room{
		ID:          string(w.ID),
		HostID:      string(w.HostID),
		Title:       w.Title,
		Description: w.Description,
		Address:     w.Address,
		City:        w.City,
		DayPrice:    w.DayPrice,
		MaxGuests:   w.MaxGuests,
		Photos:      w.Photos,
		Rating:      w.Rating,
	}
	for _, r := range w.Reservations {
		in, errIn := daterange.ParseDay(r.CheckInDate)
		out, errOut := daterange.ParseDay(r.CheckOutDate)
		if errIn != nil || errOut != nil {
			if logger != nil {
				logger.Warn("skipping reservation with bad dates",
					"room_id", room.ID,
					"check_in_date", r.CheckInDate,
					"check_out_date", r.CheckOutDate,
				)
			}
			continue
		}
		room.Reservations = append(room.Reservations, availability.Interval{
			CheckIn:  in,
			CheckOut: out,
			Status:   availability.Status(strings.TrimSpace(r.Status)),
		})
	}
	return room
}

func toReservation(w reservationWire) domainrooms.Reservation {
	res := domainrooms.Reservation{
		ID:         string(w.ID),
		RoomID:     string(w.RoomID),
		RoomTitle:  w.RoomTitle,
		Guests:     w.Guests,
		Status:     availability.Status(strings.ToUpper(strings.TrimSpace(w.Status))),
		TotalPrice: w.TotalPrice,
		PaymentID:  w.PaymentID,
	}
	res.CheckIn, _ = daterange.ParseDay(w.CheckInDate)
	res.CheckOut, _ = daterange.ParseDay(w.CheckOutDate)
	return res
}

func toVerification(w verifyResponse) domainpayments.Verification {
	v := domainpayments.Verification{
		PaymentID:     w.PaymentID,
		Status:        domainpayments.Status(strings.ToUpper(strings.TrimSpace(w.Status))),
		RoomID:        string(w.RoomID),
		Amount:        w.Amount,
		FailureReason: w.FailReason,
	}
	if va := w.VirtualAccount; va != nil {
		account := &domainpayments.VirtualAccount{Bank: va.BankName, Number: va.AccountNumber, Holder: va.AccountHolder}
		if due, err := time.Parse(time.RFC3339, va.DueDate); err == nil {
			account.DueDate = due.UTC()
		}
		v.VirtualAccount = account
	}
	return v
}
