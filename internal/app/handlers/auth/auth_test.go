package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/app/policies"
	domainauth "roomfront/internal/domain/auth"
)

type fakeAuth struct {
	identity     policies.Identity
	err          error
	registered   []string
	lastEmail    string
	lastPassword string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (policies.Identity, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.identity, f.err
}

func (f *fakeAuth) RegisterHost(_ context.Context, token string) error {
	f.registered = append(f.registered, token)
	return f.err
}

type dropRecorder struct{ dropped []string }

func (d *dropRecorder) Drop(id string) { d.dropped = append(d.dropped, id) }

func TestLoginOpensSession(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	port := &fakeAuth{identity: policies.Identity{Token: "tok", UserID: "u1", Name: "Kim", IsHost: true}}
	h := &LoginHandler{Auth: port, SessionTTL: time.Hour, Now: func() time.Time { return now }, NewID: func() string { return "sess-1" }}

	s, err := h.Handle(context.Background(), LoginCommand{Email: " Kim@Example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", port.lastEmail)
	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, "kim@example.com", s.Email)
	assert.True(t, s.HostMode)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}

func TestLoginPropagatesBackendError(t *testing.T) {
	boom := errors.New("invalid credentials")
	h := &LoginHandler{Auth: &fakeAuth{err: boom}, SessionTTL: time.Hour}
	_, err := h.Handle(context.Background(), LoginCommand{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, LoginCommand{Email: "a@b.c"}.Validate(), ErrCredentialsRequired)
}

func TestRegisterHostPromotesSession(t *testing.T) {
	port := &fakeAuth{}
	h := &RegisterHostHandler{Auth: port}
	ctx := domainauth.ContextWithSession(context.Background(), domainauth.Session{ID: "s1", UserID: "u1", Token: "tok"})

	s, err := h.Handle(ctx, RegisterHostCommand{})
	require.NoError(t, err)
	assert.True(t, s.IsHost)
	assert.True(t, s.HostMode)
	assert.Equal(t, []string{"tok"}, port.registered)
}

func TestSetHostMode(t *testing.T) {
	drops := &dropRecorder{}
	h := &SetHostModeHandler{Selections: drops}
	guest := domainauth.ContextWithSession(context.Background(), domainauth.Session{ID: "s1", UserID: "u1"})
	_, err := h.Handle(guest, SetHostModeCommand{On: true})
	assert.ErrorIs(t, err, domainauth.ErrNotHost)

	host := domainauth.ContextWithSession(context.Background(), domainauth.Session{ID: "s2", UserID: "u2", IsHost: true, HostMode: true})
	s, err := h.Handle(host, SetHostModeCommand{On: false})
	require.NoError(t, err)
	assert.False(t, s.HostMode)
	assert.Equal(t, []string{"s2"}, drops.dropped)
}

func TestLogoutDropsSelection(t *testing.T) {
	drops := &dropRecorder{}
	h := &LogoutHandler{Selections: drops}
	ctx := domainauth.ContextWithSession(context.Background(), domainauth.Session{ID: "s1", UserID: "u1"})
	_, err := h.Handle(ctx, LogoutCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, drops.dropped)
}
