package policies

import (
	"context"

	domainrooms "roomfront/internal/domain/rooms"
)

// RoomsPort reads and writes rooms and reservations on the backend. Token is
// the caller's bearer token; public reads accept an empty token.
type RoomsPort interface {
	HostRooms(ctx context.Context, token string) ([]domainrooms.Room, error)
	Search(ctx context.Context, token string, filter domainrooms.SearchFilter) ([]domainrooms.Room, error)
	Room(ctx context.Context, token, roomID string) (domainrooms.Room, error)
	Reserve(ctx context.Context, token string, req domainrooms.ReservationRequest) (domainrooms.Reservation, error)
	MyReservations(ctx context.Context, token string) ([]domainrooms.Reservation, error)
	Register(ctx context.Context, token string, draft domainrooms.Draft) (domainrooms.Room, error)
}
