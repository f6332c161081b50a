package rooms

import (
	"context"
	"strings"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/queries"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

const getRoomKey = "rooms.get"

type GetRoomQuery struct {
	RoomID string
}

func (q GetRoomQuery) Key() string { return getRoomKey }

func (q GetRoomQuery) Validate() error {
	if strings.TrimSpace(q.RoomID) == "" {
		return domainrooms.ErrRoomNotFound
	}
	return nil
}

// GetRoomHandler returns a room with the days guests cannot book.
type GetRoomHandler struct {
	Rooms RoomReader
	Today func() daterange.Day
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (dto.RoomDetail, error) {
	room, err := h.Rooms.Room(ctx, tokenFrom(ctx), q.RoomID)
	if err != nil {
		return dto.RoomDetail{}, err
	}
	return dto.MapRoomDetail(room, room.Snapshot(todayOr(h.Today))), nil
}

var _ queries.Handler[GetRoomQuery, dto.RoomDetail] = (*GetRoomHandler)(nil)
