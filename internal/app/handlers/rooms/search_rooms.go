package rooms

import (
	"context"
	"strings"

	"roomfront/internal/app/dto"
	"roomfront/internal/app/policies"
	"roomfront/internal/app/queries"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

const searchRoomsKey = "rooms.search"

type SearchRoomsQuery struct {
	City     string
	CheckIn  string
	CheckOut string
	Guests   int
}

func (q SearchRoomsQuery) Key() string { return searchRoomsKey }

func (q SearchRoomsQuery) Validate() error {
	_, err := q.filter()
	return err
}

func (q SearchRoomsQuery) filter() (domainrooms.SearchFilter, error) {
	f := domainrooms.SearchFilter{City: strings.TrimSpace(q.City), Guests: q.Guests}
	if q.Guests < 0 {
		return f, domainrooms.ErrGuestsInvalid
	}
	var err error
	if strings.TrimSpace(q.CheckIn) != "" {
		if f.CheckIn, err = daterange.ParseDay(q.CheckIn); err != nil {
			return f, err
		}
	}
	if strings.TrimSpace(q.CheckOut) != "" {
		if f.CheckOut, err = daterange.ParseDay(q.CheckOut); err != nil {
			return f, err
		}
	}
	if !f.CheckIn.IsZero() && !f.CheckOut.IsZero() {
		if err := (domainrooms.Stay{CheckIn: f.CheckIn, CheckOut: f.CheckOut}).Validate(); err != nil {
			return f, err
		}
	}
	return f, nil
}

type SearchRoomsHandler struct {
	Rooms policies.RoomsPort
}

func (h *SearchRoomsHandler) Handle(ctx context.Context, q SearchRoomsQuery) ([]dto.Room, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	list, err := h.Rooms.Search(ctx, tokenFrom(ctx), filter)
	if err != nil {
		return nil, err
	}
	return dto.MapRooms(list), nil
}

var _ queries.Handler[SearchRoomsQuery, []dto.Room] = (*SearchRoomsHandler)(nil)
