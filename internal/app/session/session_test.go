package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/availability"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/selection"
	"roomfront/internal/domain/shared/daterange"
	"roomfront/internal/domain/shared/events"
)

type fakeRooms struct {
	hostRooms func(ctx context.Context, token string) ([]domainrooms.Room, error)
	room      func(ctx context.Context, token, id string) (domainrooms.Room, error)
}

func (f *fakeRooms) HostRooms(ctx context.Context, token string) ([]domainrooms.Room, error) {
	return f.hostRooms(ctx, token)
}

func (f *fakeRooms) Search(context.Context, string, domainrooms.SearchFilter) ([]domainrooms.Room, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRooms) Room(ctx context.Context, token, id string) (domainrooms.Room, error) {
	return f.room(ctx, token, id)
}

func (f *fakeRooms) Reserve(context.Context, string, domainrooms.ReservationRequest) (domainrooms.Reservation, error) {
	return domainrooms.Reservation{}, errors.New("not implemented")
}

func (f *fakeRooms) MyReservations(context.Context, string) ([]domainrooms.Reservation, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRooms) Register(context.Context, string, domainrooms.Draft) (domainrooms.Room, error) {
	return domainrooms.Room{}, errors.New("not implemented")
}

type mapCache struct {
	mu    sync.Mutex
	hosts map[string][]domainrooms.Room
	rooms map[string]domainrooms.Room
}

func newMapCache() *mapCache {
	return &mapCache{hosts: map[string][]domainrooms.Room{}, rooms: map[string]domainrooms.Room{}}
}

func (c *mapCache) HostRooms(hostID string) ([]domainrooms.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.hosts[hostID]
	return l, ok
}

func (c *mapCache) PutHostRooms(hostID string, list []domainrooms.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hosts[hostID] = list
}

func (c *mapCache) Room(id string) (domainrooms.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[id]
	return r, ok
}

func (c *mapCache) PutRoom(r domainrooms.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[r.ID] = r
}

func (c *mapCache) Invalidate(hostID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hostID == "" {
		c.hosts = map[string][]domainrooms.Room{}
	} else {
		delete(c.hosts, hostID)
	}
	delete(c.rooms, roomID)
}

func TestSelectionsResetOnRoomSwitch(t *testing.T) {
	store := NewSelections(0)
	d := daterange.MustParseDay("2025-07-10")

	require.NoError(t, store.With("s1", "room-a", func(sel *selection.Selector) error {
		sel.Click(d, availability.Snapshot{})
		return nil
	}))
	require.NoError(t, store.With("s1", "room-a", func(sel *selection.Selector) error {
		assert.Equal(t, selection.StateSingle, sel.State())
		return nil
	}))
	require.NoError(t, store.With("s1", "room-b", func(sel *selection.Selector) error {
		assert.Equal(t, selection.StateEmpty, sel.State())
		return nil
	}))
	assert.Equal(t, 1, store.Len())

	store.Drop("s1")
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, store.With(" ", "room-a", func(*selection.Selector) error { return nil }), ErrSessionRequired)
}

func TestSelectionsDropDuringCallIsNotRestored(t *testing.T) {
	store := NewSelections(0)
	d := daterange.MustParseDay("2025-07-10")

	require.NoError(t, store.With("s1", "room-a", func(sel *selection.Selector) error {
		sel.Click(d, availability.Snapshot{})
		store.Drop("s1")
		return nil
	}))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.With("s1", "room-a", func(sel *selection.Selector) error {
		assert.Equal(t, selection.StateEmpty, sel.State())
		return nil
	}))
}

func TestSelectionsSerializeCallsPastIdleTTL(t *testing.T) {
	store := NewSelections(20 * time.Millisecond)
	d := daterange.MustParseDay("2025-07-10")
	done := make(chan selection.State, 1)

	require.NoError(t, store.With("s1", "room-a", func(sel *selection.Selector) error {
		sel.Click(d, availability.Snapshot{})
		time.Sleep(50 * time.Millisecond)
		go func() {
			_ = store.With("s1", "room-a", func(sel *selection.Selector) error {
				done <- sel.State()
				return nil
			})
		}()
		select {
		case <-done:
			t.Error("second call ran while the first held the selection")
		case <-time.After(20 * time.Millisecond):
		}
		return nil
	}))

	select {
	case state := <-done:
		assert.Equal(t, selection.StateSingle, state)
	case <-time.After(time.Second):
		t.Fatal("second call never ran")
	}
}

func TestSelectionsPropagateCallbackError(t *testing.T) {
	store := NewSelections(0)
	boom := errors.New("boom")
	assert.ErrorIs(t, store.With("s1", "r", func(*selection.Selector) error { return boom }), boom)
}

func TestTrackerOnlyLatestTicketCommits(t *testing.T) {
	tr := NewTracker()
	first := tr.Begin("host:h1")
	second := tr.Begin("host:h1")

	assert.True(t, tr.Commit(second, nil))
	assert.False(t, tr.Commit(first, nil))
}

func TestTrackerTicketIssuedAfterCommitStaysLatest(t *testing.T) {
	tr := NewTracker()
	oldest := tr.Begin("room:r1")
	middle := tr.Begin("room:r1")
	require.True(t, tr.Commit(middle, nil))
	newest := tr.Begin("room:r1")

	assert.False(t, tr.Commit(oldest, nil))
	assert.True(t, tr.Commit(newest, nil))
}

func TestTrackerInvalidateAllRejectsInFlight(t *testing.T) {
	tr := NewTracker()
	tk := tr.Begin("host:h1")
	tr.InvalidateAll()
	ran := false
	assert.False(t, tr.Commit(tk, func() { ran = true }))
	assert.False(t, ran)

	assert.True(t, tr.Commit(tr.Begin("host:h1"), nil))
}

func TestRoomsLoaderCachesHostRooms(t *testing.T) {
	calls := 0
	port := &fakeRooms{hostRooms: func(_ context.Context, token string) ([]domainrooms.Room, error) {
		calls++
		assert.Equal(t, "tok", token)
		return []domainrooms.Room{{ID: "r1", HostID: "h1"}}, nil
	}}
	loader := NewRoomsLoader(port, newMapCache(), nil)
	s := auth.Session{UserID: "h1", Token: "tok"}

	_, err := loader.HostRooms(context.Background(), s)
	require.NoError(t, err)
	room, err := loader.HostRoom(context.Background(), s, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, 1, calls)

	_, err = loader.HostRoom(context.Background(), s, "missing")
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)

	require.NoError(t, loader.OnDataChanged(context.Background(), events.DataChanged{RoomID: "r1", HostID: "h1"}))
	_, err = loader.HostRooms(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRoomsLoaderDropsResponseOvertakenByDataChange(t *testing.T) {
	cache := newMapCache()
	var loader *RoomsLoader
	port := &fakeRooms{hostRooms: func(context.Context, string) ([]domainrooms.Room, error) {
		// the change lands while this fetch is in flight
		require.NoError(t, loader.OnDataChanged(context.Background(), events.DataChanged{RoomID: "r1"}))
		return []domainrooms.Room{{ID: "r1"}}, nil
	}}
	loader = NewRoomsLoader(port, cache, nil)

	list, err := loader.HostRooms(context.Background(), auth.Session{UserID: "h1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, cached := cache.HostRooms("h1")
	assert.False(t, cached)
}
