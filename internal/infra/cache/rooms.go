package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"roomfront/internal/app/session"
	domainrooms "roomfront/internal/domain/rooms"
)

const (
	hostPrefix = "host:"
	roomPrefix = "room:"
)

// Rooms caches fetched rooms with their reservations for a short TTL.
type Rooms struct {
	store *gocache.Cache
	ttl   time.Duration
}

func NewRooms(ttl time.Duration) *Rooms {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Rooms{store: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (r *Rooms) HostRooms(hostID string) ([]domainrooms.Room, bool) {
	raw, ok := r.store.Get(hostPrefix + hostID)
	if !ok {
		return nil, false
	}
	return raw.([]domainrooms.Room), true
}

func (r *Rooms) PutHostRooms(hostID string, list []domainrooms.Room) {
	r.store.Set(hostPrefix+hostID, list, r.ttl)
}

func (r *Rooms) Room(roomID string) (domainrooms.Room, bool) {
	raw, ok := r.store.Get(roomPrefix + roomID)
	if !ok {
		return domainrooms.Room{}, false
	}
	return raw.(domainrooms.Room), true
}

func (r *Rooms) PutRoom(room domainrooms.Room) {
	r.store.Set(roomPrefix+room.ID, room, r.ttl)
}

func (r *Rooms) Invalidate(hostID, roomID string) {
	if roomID != "" {
		r.store.Delete(roomPrefix + roomID)
	}
	if hostID != "" {
		r.store.Delete(hostPrefix + hostID)
		return
	}
	for key := range r.store.Items() {
		if strings.HasPrefix(key, hostPrefix) {
			r.store.Delete(key)
		}
	}
}

func (r *Rooms) Len() int { return r.store.ItemCount() }

var _ session.RoomsCache = (*Rooms)(nil)
