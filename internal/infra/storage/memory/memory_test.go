package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/app/middleware"
	appoutbox "roomfront/internal/app/outbox"
	"roomfront/internal/domain/auth"
	"roomfront/internal/domain/availability"
	domainblocks "roomfront/internal/domain/blocks"
	domainpayments "roomfront/internal/domain/payments"
	domainrooms "roomfront/internal/domain/rooms"
	"roomfront/internal/domain/shared/daterange"
	infraoutbox "roomfront/internal/infra/outbox"
)

func hostWithRoom(t *testing.T) (*Backend, string, string) {
	t.Helper()
	b := NewBackend()
	ctx := context.Background()
	id, err := b.Login(ctx, "host@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, b.RegisterHost(ctx, id.Token))
	room, err := b.Register(ctx, id.Token, domainrooms.Draft{Title: "Hanok", City: "Seoul", DayPrice: 80000, MaxGuests: 2})
	require.NoError(t, err)
	return b, id.Token, room.ID
}

func TestBackendBlocksAndUnblock(t *testing.T) {
	b, token, roomID := hostWithRoom(t)
	ctx := context.Background()
	days := daterange.Range{Start: daterange.MustParseDay("2025-07-15"), End: daterange.MustParseDay("2025-07-17")}.Days()
	sub, err := domainblocks.NewSubmission(roomID, days, 80000)
	require.NoError(t, err)
	require.NoError(t, b.SubmitBlocks(ctx, token, sub))

	rooms, err := b.HostRooms(ctx, token)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	snap := rooms[0].Snapshot(daterange.MustParseDay("2025-07-01"))
	assert.Equal(t, []string{"2025-07-15", "2025-07-16", "2025-07-17"}, snap.Blocked.Sorted())

	require.NoError(t, b.Unblock(ctx, token, roomID, daterange.MustParseDay("2025-07-16")))
	assert.ErrorIs(t, b.Unblock(ctx, token, roomID, daterange.MustParseDay("2025-07-16")), ErrNotBlocked)

	room, err := b.Room(ctx, "", roomID)
	require.NoError(t, err)
	snap = room.Snapshot(daterange.MustParseDay("2025-07-01"))
	assert.Equal(t, []string{"2025-07-15", "2025-07-17"}, snap.Blocked.Sorted())
}

func TestBackendUnblockSplitsLongBlock(t *testing.T) {
	b, token, roomID := hostWithRoom(t)
	room, _ := b.Room(context.Background(), "", roomID)
	room.Reservations = []availability.Interval{{
		CheckIn:  daterange.MustParseDay("2025-07-01"),
		CheckOut: daterange.MustParseDay("2025-07-05"),
		Status:   availability.StatusBlocked,
	}}
	b.Seed(room)

	require.NoError(t, b.Unblock(context.Background(), token, roomID, daterange.MustParseDay("2025-07-03")))
	room, _ = b.Room(context.Background(), "", roomID)
	snap := room.Snapshot(daterange.MustParseDay("2025-07-01"))
	assert.Equal(t, []string{"2025-07-01", "2025-07-02", "2025-07-04", "2025-07-05"}, snap.Blocked.Sorted())
}

func TestBackendOwnership(t *testing.T) {
	b, _, roomID := hostWithRoom(t)
	ctx := context.Background()
	guest, err := b.Login(ctx, "guest@example.com", "pw")
	require.NoError(t, err)

	sub, _ := domainblocks.NewSubmission(roomID, []daterange.Day{daterange.MustParseDay("2025-07-20")}, 0)
	assert.ErrorIs(t, b.SubmitBlocks(ctx, guest.Token, sub), ErrNotOwner)
	_, err = b.HostRooms(ctx, "bogus")
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
}

func TestBackendReserveAndVerify(t *testing.T) {
	b, _, roomID := hostWithRoom(t)
	ctx := context.Background()
	guest, err := b.Login(ctx, "guest@example.com", "pw")
	require.NoError(t, err)

	stay, err := domainrooms.ParseStay("2025-07-10", "2025-07-12")
	require.NoError(t, err)
	res, err := b.Reserve(ctx, guest.Token, domainrooms.ReservationRequest{RoomID: roomID, Stay: stay, Guests: 2, PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(160000), res.TotalPrice)

	_, err = b.Reserve(ctx, guest.Token, domainrooms.ReservationRequest{RoomID: roomID, Stay: stay, Guests: 1})
	assert.ErrorIs(t, err, domainrooms.ErrStayUnavailable)

	mine, err := b.MyReservations(ctx, guest.Token)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	v, err := b.Verify(ctx, guest.Token, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, domainpayments.StatusPaid, v.Status)
	assert.Equal(t, roomID, v.RoomID)

	v, err = b.Verify(ctx, guest.Token, "pay-x")
	require.NoError(t, err)
	assert.Equal(t, domainpayments.OutcomeFailed, v.Status.Outcome())

	found, err := b.Search(ctx, "", domainrooms.SearchFilter{City: "seoul", CheckIn: stay.CheckIn, CheckOut: stay.CheckOut})
	require.NoError(t, err)
	assert.Empty(t, found)
	found, err = b.Search(ctx, "", domainrooms.SearchFilter{City: "seoul"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestIdempotencyStore(t *testing.T) {
	s := NewIdempotencyStore(time.Minute)
	ctx := context.Background()
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{}`)}))
	rec, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{}`), rec.Payload)
}

func TestInboxSeen(t *testing.T) {
	in := NewInbox(time.Minute)
	seen, err := in.Seen(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = in.Seen(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestOutboxQueue(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	o := NewOutbox(1)
	o.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, o.Add(ctx, appoutbox.EventRecord{ID: "evt-1", Name: "calendar.blocked", Payload: []byte(`{}`)}))
	assert.ErrorIs(t, o.Add(ctx, appoutbox.EventRecord{ID: "evt-2"}), ErrOutboxFull)

	doc, err := o.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, infraoutbox.StateClaimed, doc.State)

	again, err := o.Claim(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, o.MarkFailed(ctx, "evt-1", now.Add(time.Second), "boom"))
	again, _ = o.Claim(ctx, "w1")
	assert.Nil(t, again)

	now = now.Add(2 * time.Second)
	again, _ = o.Claim(ctx, "w1")
	require.NotNil(t, again)
	assert.Equal(t, 1, again.Attempts)

	require.NoError(t, o.MarkSent(ctx, "evt-1"))
	assert.Zero(t, o.Pending())
}
