package rooms

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/dto"
	"roomfront/internal/app/middleware"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/signals"
	"roomfront/internal/domain/auth"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/domain/shared/events"
)

const requestReservationKey = "rooms.reservations.request"

type RequestReservationCommand struct {
	RoomID          string
	CheckIn         string
	CheckOut        string
	Guests          int
	PaymentID       string
	IdempotencyKeyV string
}

func (c RequestReservationCommand) Key() string { return requestReservationKey }

func (c RequestReservationCommand) Access() auth.Access { return auth.AccessMember }

func (c RequestReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestReservationCommand) ResultPrototype() any { return &dto.Reservation{} }

func (c RequestReservationCommand) Validate() error {
	if strings.TrimSpace(c.RoomID) == "" {
		return domainrooms.ErrRoomNotFound
	}
	if c.Guests < 1 {
		return domainrooms.ErrGuestsInvalid
	}
	_, err := domainrooms.ParseStay(c.CheckIn, c.CheckOut)
	return err
}

// RequestReservationHandler checks the stay against the room's calendar
// before asking the backend to book it.
type RequestReservationHandler struct {
	Rooms   RoomReader
	Backend policies.RoomsPort
	Signals signals.Publisher
	Today   func() daterange.Day
	Now     func() time.Time
	Logger  *slog.Logger
}

func (h *RequestReservationHandler) Handle(ctx context.Context, cmd RequestReservationCommand) (*dto.Reservation, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	stay, err := domainrooms.ParseStay(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	room, err := h.Rooms.Room(ctx, s.Token, cmd.RoomID)
	if err != nil {
		return nil, err
	}
	if err := room.CheckStay(stay, cmd.Guests, room.Snapshot(todayOr(h.Today))); err != nil {
		return nil, err
	}

	res, err := h.Backend.Reserve(ctx, s.Token, domainrooms.ReservationRequest{
		RoomID:    room.ID,
		Stay:      stay,
		Guests:    cmd.Guests,
		PaymentID: strings.TrimSpace(cmd.PaymentID),
	})
	if err != nil {
		loggerOr(h.Logger).Error("reservation request failed", "room_id", room.ID, "error", err)
		return nil, err
	}

	h.Signals.Publish(ctx, events.DataChanged{
		Kind:   events.ChangeReservationMade,
		RoomID: room.ID,
		HostID: room.HostID,
		Dates:  daterange.Keys(stay.NightDays()),
		At:     nowOr(h.Now),
	})
	out := dto.MapReservation(res)
	return &out, nil
}

func nowOr(fn func() time.Time) time.Time {
	if fn != nil {
		return fn().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestReservationCommand, *dto.Reservation] = (*RequestReservationHandler)(nil)
var _ middleware.IdempotentCommand = RequestReservationCommand{}
