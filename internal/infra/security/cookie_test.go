package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomfront/internal/domain/auth"
)

func TestSealRoundTripAndTamper(t *testing.T) {
	s, err := NewSealer("secret")
	require.NoError(t, err)

	sealed, err := s.Seal(map[string]string{"a": "b"})
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, s.Open(sealed, &out))
	assert.Equal(t, "b", out["a"])

	other, err := NewSealer("other")
	require.NoError(t, err)
	assert.ErrorIs(t, other.Open(sealed, &out), ErrTampered)
	assert.ErrorIs(t, s.Open(sealed[:len(sealed)-2]+"xx", &out), ErrTampered)
	assert.ErrorIs(t, s.Open("", &out), ErrTampered)

	_, err = NewSealer(" ")
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestSessionCodec(t *testing.T) {
	sealer, err := NewSealer("secret")
	require.NoError(t, err)
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	codec := SessionCodec{Sealer: sealer, Now: func() time.Time { return now }}

	in := auth.Session{ID: "s1", Token: "tok", UserID: "u1", IsHost: true, HostMode: true, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	value, err := codec.Encode(in)
	require.NoError(t, err)

	out, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	later := SessionCodec{Sealer: sealer, Now: func() time.Time { return now.Add(2 * time.Hour) }}
	_, err = later.Decode(value)
	assert.ErrorIs(t, err, auth.ErrSessionExpired)
}
