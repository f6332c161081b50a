package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	s, err := NewSession(CreateSessionParams{ID: "s1", Token: " tok ", UserID: "u1", IsHost: true, TTL: time.Hour, Now: now})
	require.NoError(t, err)

	assert.Equal(t, "tok", s.Token)
	assert.True(t, s.HostMode, "hosts land in host mode")
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))

	_, err = NewSession(CreateSessionParams{UserID: "u1", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrTokenRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", TTL: time.Hour})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = NewSession(CreateSessionParams{Token: "t", UserID: "u"})
	assert.ErrorIs(t, err, ErrTTLInvalid)
}

func TestHostModeSwitching(t *testing.T) {
	guest := Session{Token: "t", UserID: "u"}
	_, err := guest.WithHostMode(true)
	assert.ErrorIs(t, err, ErrNotHost)

	host := guest.PromoteToHost()
	assert.True(t, host.IsHost)
	off, err := host.WithHostMode(false)
	require.NoError(t, err)
	assert.False(t, off.HostMode)
}

func TestAccessCheck(t *testing.T) {
	guest := Session{Token: "t", UserID: "u"}
	host := guest.PromoteToHost()
	hostAsGuest, _ := host.WithHostMode(false)

	assert.NoError(t, AccessPublic.Check(Session{}, false))
	assert.ErrorIs(t, AccessMember.Check(Session{}, false), ErrUnauthenticated)
	assert.NoError(t, AccessMember.Check(guest, true))
	assert.ErrorIs(t, AccessHost.Check(Session{}, false), ErrUnauthenticated)
	assert.ErrorIs(t, AccessHost.Check(guest, true), ErrHostModeRequired)
	assert.ErrorIs(t, AccessHost.Check(hostAsGuest, true), ErrHostModeRequired)
	assert.NoError(t, AccessHost.Check(host, true))
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithSession(context.Background(), Session{ID: "s1"})
	s, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "s1", s.ID)
}
