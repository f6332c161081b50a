package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"roomfront/internal/app/session"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/availability"
	domainblocks "roomfront/internal/domain/blocks"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
)

var (
	ErrNothingSelected  = errors.New("calendar: no dates selected")
	ErrNoPendingUnblock = errors.New("calendar: no date awaiting unblock")
	ErrNotBlocked       = domainblocks.ErrNotBlocked
	ErrRoomRequired     = errors.New("calendar: room id is required")
)

// ConflictNotice is shown when a range would cross an unavailable day.
const ConflictNotice = "선택한 기간에 예약되었거나 차단된 날짜가 포함되어 있습니다."

// HostRoomReader returns one of the signed-in host's rooms with its
// reservation intervals.
type HostRoomReader interface {
	HostRoom(ctx context.Context, s auth.Session, roomID string) (domainrooms.Room, error)
}

// Deps is shared by every calendar handler.
type Deps struct {
	Rooms      HostRoomReader
	Selections *session.Selections
	Today      func() daterange.Day
	Logger     *slog.Logger
}

// load returns the caller's session, the room and its classification as of today.
func (d Deps) load(ctx context.Context, roomID string) (auth.Session, domainrooms.Room, availability.Snapshot, error) {
	s, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Session{}, domainrooms.Room{}, availability.Snapshot{}, auth.ErrUnauthenticated
	}
	room, err := d.Rooms.HostRoom(ctx, s, roomID)
	if err != nil {
		return auth.Session{}, domainrooms.Room{}, availability.Snapshot{}, err
	}
	return s, room, room.Snapshot(d.today()), nil
}

func (d Deps) today() daterange.Day {
	if d.Today != nil {
		return d.Today()
	}
	return daterange.DayOf(time.Now())
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
