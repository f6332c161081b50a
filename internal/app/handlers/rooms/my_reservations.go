package rooms

import (
	"context"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/queries"
	"roomfront/internal/domain/auth"
)

const myReservationsKey = "rooms.reservations.mine"

type MyReservationsQuery struct{}

func (q MyReservationsQuery) Key() string { return myReservationsKey }

func (q MyReservationsQuery) Access() auth.Access { return auth.AccessMember }

type MyReservationsHandler struct {
	Rooms policies.RoomsPort
}

func (h *MyReservationsHandler) Handle(ctx context.Context, _ MyReservationsQuery) ([]dto.Reservation, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	list, err := h.Rooms.MyReservations(ctx, s.Token)
	if err != nil {
		return nil, err
	}
	return dto.MapReservations(list), nil
}

var _ queries.Handler[MyReservationsQuery, []dto.Reservation] = (*MyReservationsHandler)(nil)
