package rooms

import (
	"context"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/queries"
	"roomfront/internal/domain/auth"
)

const hostRoomsKey = "rooms.host.list"

type HostRoomsQuery struct{}

func (q HostRoomsQuery) Key() string { return hostRoomsKey }

func (q HostRoomsQuery) Access() auth.Access { return auth.AccessHost }

type HostRoomsHandler struct {
	Rooms RoomReader
}

func (h *HostRoomsHandler) Handle(ctx context.Context, _ HostRoomsQuery) ([]dto.Room, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	list, err := h.Rooms.HostRooms(ctx, s)
	if err != nil {
		return nil, err
	}
	return dto.MapRooms(list), nil
}

var _ queries.Handler[HostRoomsQuery, []dto.Room] = (*HostRoomsHandler)(nil)
