package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainrooms "roomfront/internal/domain/rooms"
)

func TestRoomsInvalidateByHost(t *testing.T) {
	c := NewRooms(time.Minute)
	c.PutHostRooms("h1", []domainrooms.Room{{ID: "r1"}})
	c.PutHostRooms("h2", []domainrooms.Room{{ID: "r2"}})
	c.PutRoom(domainrooms.Room{ID: "r1"})

	c.Invalidate("h1", "r1")

	_, ok := c.HostRooms("h1")
	assert.False(t, ok)
	_, ok = c.Room("r1")
	assert.False(t, ok)
	list, ok := c.HostRooms("h2")
	require.True(t, ok)
	assert.Equal(t, "r2", list[0].ID)
}

func TestRoomsInvalidateWithoutHostDropsEveryList(t *testing.T) {
	c := NewRooms(time.Minute)
	c.PutHostRooms("h1", nil)
	c.PutHostRooms("h2", nil)
	c.PutRoom(domainrooms.Room{ID: "r9"})

	c.Invalidate("", "r1")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Room("r9")
	assert.True(t, ok)
}

func TestRoomsExpire(t *testing.T) {
	c := NewRooms(20 * time.Millisecond)
	c.PutRoom(domainrooms.Room{ID: "r1"})
	assert.Eventually(t, func() bool {
		_, ok := c.Room("r1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
