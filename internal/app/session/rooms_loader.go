package session

import (
	"context"
	"fmt"
	"log/slog"

	"roomfront/internal/app/policies"
	"roomfront/internal/domain/auth"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/events"
)

// RoomsCache keeps the last fetched rooms, including their reservations.
type RoomsCache interface {
	HostRooms(hostID string) ([]domainrooms.Room, bool)
	PutHostRooms(hostID string, list []domainrooms.Room)
	Room(roomID string) (domainrooms.Room, bool)
	PutRoom(room domainrooms.Room)
	// Invalidate drops the host's list (every list when hostID is empty)
	// and the room's detail entry.
	Invalidate(hostID, roomID string)
}

// RoomsLoader reads rooms through the cache. A response that became stale
// while in flight is returned to its caller but never cached.
type RoomsLoader struct {
	Rooms   policies.RoomsPort
	Cache   RoomsCache
	Tracker *Tracker
	Logger  *slog.Logger
}

func NewRoomsLoader(rooms policies.RoomsPort, cache RoomsCache, logger *slog.Logger) *RoomsLoader {
	return &RoomsLoader{Rooms: rooms, Cache: cache, Tracker: NewTracker(), Logger: logger}
}

func (l *RoomsLoader) HostRooms(ctx context.Context, s auth.Session) ([]domainrooms.Room, error) {
	if l.Cache != nil {
		if list, ok := l.Cache.HostRooms(s.UserID); ok {
			return list, nil
		}
	}
	tk := l.Tracker.Begin("host:" + s.UserID)
	list, err := l.Rooms.HostRooms(ctx, s.Token)
	if err != nil {
		return nil, err
	}
	committed := l.Tracker.Commit(tk, func() {
		if l.Cache != nil {
			l.Cache.PutHostRooms(s.UserID, list)
		}
	})
	if !committed {
		l.logger().Debug("stale host rooms response not cached", "host_id", s.UserID)
	}
	return list, nil
}

// HostRoom finds one of the host's own rooms.
func (l *RoomsLoader) HostRoom(ctx context.Context, s auth.Session, roomID string) (domainrooms.Room, error) {
	list, err := l.HostRooms(ctx, s)
	if err != nil {
		return domainrooms.Room{}, err
	}
	for _, r := range list {
		if r.ID == roomID {
			return r, nil
		}
	}
	return domainrooms.Room{}, fmt.Errorf("%w: %s", domainrooms.ErrRoomNotFound, roomID)
}

// Room reads a public room detail.
func (l *RoomsLoader) Room(ctx context.Context, token, roomID string) (domainrooms.Room, error) {
	if l.Cache != nil {
		if r, ok := l.Cache.Room(roomID); ok {
			return r, nil
		}
	}
	tk := l.Tracker.Begin("room:" + roomID)
	r, err := l.Rooms.Room(ctx, token, roomID)
	if err != nil {
		return domainrooms.Room{}, err
	}
	l.Tracker.Commit(tk, func() {
		if l.Cache != nil {
			l.Cache.PutRoom(r)
		}
	})
	return r, nil
}

// OnDataChanged is the signal subscriber that drops cached rooms.
func (l *RoomsLoader) OnDataChanged(_ context.Context, ev events.DataChanged) error {
	l.Tracker.InvalidateAll()
	if l.Cache != nil {
		l.Cache.Invalidate(ev.HostID, ev.RoomID)
	}
	l.logger().Debug("room cache invalidated", "kind", ev.Kind, "room_id", ev.RoomID, "host_id", ev.HostID, "local", ev.Local())
	return nil
}

func (l *RoomsLoader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
