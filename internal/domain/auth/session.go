package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTokenRequired    = errors.New("auth: token is required")
	ErrUserRequired     = errors.New("auth: user is required")
	ErrTTLInvalid       = errors.New("auth: ttl must be positive")
	ErrUnauthenticated  = errors.New("auth: login required")
	ErrHostModeRequired = errors.New("auth: host mode required")
	ErrNotHost          = errors.New("auth: user is not registered as host")
	ErrSessionExpired   = errors.New("auth: session expired")
)

// Session is the browser's persisted login: the backend bearer token and the
// host-mode flag, plus enough identity to render the header.
type Session struct {
	ID        string
	Token     string
	UserID    string
	Name      string
	Email     string
	IsHost    bool
	HostMode  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	ID     string
	Token  string
	UserID string
	Name   string
	Email  string
	IsHost bool
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (Session, error) {
	token := strings.TrimSpace(params.Token)
	if token == "" {
		return Session{}, ErrTokenRequired
	}
	if strings.TrimSpace(params.UserID) == "" {
		return Session{}, ErrUserRequired
	}
	if params.TTL <= 0 {
		return Session{}, ErrTTLInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return Session{
		ID:        params.ID,
		Token:     token,
		UserID:    params.UserID,
		Name:      params.Name,
		Email:     params.Email,
		IsHost:    params.IsHost,
		HostMode:  params.IsHost,
		CreatedAt: now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (s Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

// WithHostMode switches between guest and host screens.
func (s Session) WithHostMode(on bool) (Session, error) {
	if on && !s.IsHost {
		return s, ErrNotHost
	}
	s.HostMode = on
	return s, nil
}

// PromoteToHost marks the user as host after backend registration.
func (s Session) PromoteToHost() Session {
	s.IsHost = true
	s.HostMode = true
	return s
}

// Access is the gate a command or query sits behind.
type Access int

const (
	AccessPublic Access = iota
	AccessMember
	AccessHost
)

// Check verifies a session (possibly absent) against an access level.
func (a Access) Check(s Session, ok bool) error {
	switch a {
	case AccessMember:
		if !ok {
			return ErrUnauthenticated
		}
	case AccessHost:
		if !ok {
			return ErrUnauthenticated
		}
		if !s.IsHost || !s.HostMode {
			return ErrHostModeRequired
		}
	}
	return nil
}

type ctxKey struct{}

func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	val := ctx.Value(ctxKey{})
	if val == nil {
		return Session{}, false
	}
	s, ok := val.(Session)
	return s, ok
}
