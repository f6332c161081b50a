package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"roomfront/internal/domain/auth"
)

const nonceSize = 24

var (
	ErrSecretRequired = errors.New("security: secret is required")
	ErrTampered       = errors.New("security: cookie value rejected")
)

// Sealer encrypts and authenticates small values for cookies.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from an arbitrary-length secret.
func NewSealer(secret string) (*Sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	return &Sealer{key: sha256.Sum256([]byte(secret))}, nil
}

func (s *Sealer) Seal(v any) (string, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("security: nonce read failed: %w", err)
	}
	box := secretbox.Seal(nonce[:], msg, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (s *Sealer) Open(value string, out any) error {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return ErrTampered
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	msg, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return ErrTampered
	}
	if err := json.Unmarshal(msg, out); err != nil {
		return ErrTampered
	}
	return nil
}

type sessionClaims struct {
	ID        string    `json:"sid"`
	Token     string    `json:"tok"`
	UserID    string    `json:"uid"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsHost    bool      `json:"host"`
	HostMode  bool      `json:"mode"`
	CreatedAt time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// SessionCodec stores the whole browser session in the cookie value.
type SessionCodec struct {
	Sealer *Sealer
	Now    func() time.Time
}

func (c SessionCodec) Encode(s auth.Session) (string, error) {
	return c.Sealer.Seal(sessionClaims{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		IsHost:    s.IsHost,
		HostMode:  s.HostMode,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
}

func (c SessionCodec) Decode(value string) (auth.Session, error) {
	var claims sessionClaims
	if err := c.Sealer.Open(value, &claims); err != nil {
		return auth.Session{}, err
	}
	s := auth.Session{
		ID:        claims.ID,
		Token:     claims.Token,
		UserID:    claims.UserID,
		Name:      claims.Name,
		Email:     claims.Email,
		IsHost:    claims.IsHost,
		HostMode:  claims.HostMode,
		CreatedAt: claims.CreatedAt,
		ExpiresAt: claims.ExpiresAt,
	}
	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	if s.Expired(now) {
		return auth.Session{}, auth.ErrSessionExpired
	}
	return s, nil
}
