package backendapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"roomfront/internal/app/policies"
	domainrooms "roomfront/internal/domain/rooms"
)

func (c *Client) HostRooms(ctx context.Context, token string) ([]domainrooms.Room, error) {
	var wire []roomWire
	if err := c.do(ctx, http.MethodGet, "/host/rooms", token, nil, nil, &wire); err != nil {
		return nil, err
	}
	return c.toRooms(wire), nil
}

func (c *Client) Search(ctx context.Context, token string, filter domainrooms.SearchFilter) ([]domainrooms.Room, error) {
	q := url.Values{}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if !filter.CheckIn.IsZero() {
		q.Set("check_in_date", filter.CheckIn.Key())
	}
	if !filter.CheckOut.IsZero() {
		q.Set("check_out_date", filter.CheckOut.Key())
	}
	if filter.Guests > 0 {
		q.Set("guests", strconv.Itoa(filter.Guests))
	}
	var wire []roomWire
	if err := c.do(ctx, http.MethodGet, "/rooms", token, q, nil, &wire); err != nil {
		return nil, err
	}
	return c.toRooms(wire), nil
}

func (c *Client) Room(ctx context.Context, token, roomID string) (domainrooms.Room, error) {
	var wire roomWire
	if err := c.do(ctx, http.MethodGet, "/rooms/"+roomID, token, nil, nil, &wire); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domainrooms.Room{}, fmt.Errorf("%w: %s", domainrooms.ErrRoomNotFound, roomID)
		}
		return domainrooms.Room{}, err
	}
	return toRoom(wire, c.logger), nil
}

func (c *Client) Reserve(ctx context.Context, token string, req domainrooms.ReservationRequest) (domainrooms.Reservation, error) {
	body := reservationRequest{
		CheckInDate:  req.Stay.CheckIn.Key(),
		CheckOutDate: req.Stay.CheckOut.Key(),
		Guests:       req.Guests,
		PaymentID:    req.PaymentID,
	}
	var wire reservationWire
	if err := c.do(ctx, http.MethodPost, "/rooms/"+req.RoomID+"/reservations", token, nil, body, &wire); err != nil {
		return domainrooms.Reservation{}, err
	}
	res := toReservation(wire)
	if res.RoomID == "" {
		res.RoomID = req.RoomID
	}
	return res, nil
}

func (c *Client) MyReservations(ctx context.Context, token string) ([]domainrooms.Reservation, error) {
	var wire []reservationWire
	if err := c.do(ctx, http.MethodGet, "/reservations/me", token, nil, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domainrooms.Reservation, 0, len(wire))
	for _, w := range wire {
		out = append(out, toReservation(w))
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, token string, draft domainrooms.Draft) (domainrooms.Room, error) {
	photos := draft.Photos
	if photos == nil {
		photos = []string{}
	}
	body := roomDraftRequest{
		Title:       draft.Title,
		Description: draft.Description,
		Address:     draft.Address,
		City:        draft.City,
		DayPrice:    draft.DayPrice,
		MaxGuests:   draft.MaxGuests,
		Photos:      photos,
	}
	var wire roomWire
	if err := c.do(ctx, http.MethodPost, "/host/rooms", token, nil, body, &wire); err != nil {
		return domainrooms.Room{}, err
	}
	return toRoom(wire, c.logger), nil
}

func (c *Client) toRooms(wire []roomWire) []domainrooms.Room {
	out := make([]domainrooms.Room, 0, len(wire))
	for _, w := range wire {
		out = append(out, toRoom(w, c.logger))
	}
	return out
}

var _ policies.RoomsPort = (*Client)(nil)
