package rooms

import (
	"context"
	"log/slog"
	"time"

	"roomfront/internal/domain/auth"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

// RoomReader serves cached room reads.
type RoomReader interface {
	HostRooms(ctx context.Context, s auth.Session) ([]domainrooms.Room, error)
	Room(ctx context.Context, token, roomID string) (domainrooms.Room, error)
}

func todayOr(fn func() daterange.Day) daterange.Day {
	if fn != nil {
		return fn()
	}
	return daterange.DayOf(time.Now())
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// tokenFrom returns the caller's bearer token, empty for anonymous reads.
func tokenFrom(ctx context.Context) string {
	if s, ok := auth.FromContext(ctx); ok {
		return s.Token
	}
	return ""
}
