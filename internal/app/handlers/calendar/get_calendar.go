package calendar

import (
	"context"
	"strings"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/queries"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/selection"
)

const getCalendarKey = "calendar.get"

type GetCalendarQuery struct {
	RoomID string
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

func (q GetCalendarQuery) Access() auth.Access { return auth.AccessHost }

func (q GetCalendarQuery) Validate() error {
	if strings.TrimSpace(q.RoomID) == "" {
		return ErrRoomRequired
	}
	return nil
}

type GetCalendarHandler struct {
	Deps
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	s, room, snap, err := h.load(ctx, q.RoomID)
	if err != nil {
		return dto.Calendar{}, err
	}
	var out dto.Calendar
	err = h.Selections.With(s.ID, room.ID, func(sel *selection.Selector) error {
		out = dto.MapCalendar(room, snap, sel)
		return nil
	})
	return out, err
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
