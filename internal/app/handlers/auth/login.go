package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/policies"
	domainauth "roomfront/internal/domain/auth"
)

const loginKey = "auth.login"

var ErrCredentialsRequired = errors.New("auth: email and password are required")

type LoginCommand struct {
	Email    string
	Password string
}

func (c LoginCommand) Key() string { return loginKey }

func (c LoginCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

// LoginHandler exchanges credentials for a backend token and opens a session.
type LoginHandler struct {
	Auth       policies.AuthPort
	SessionTTL time.Duration
	Now        func() time.Time
	NewID      func() string
	Logger     *slog.Logger
}

func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (domainauth.Session, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	identity, err := h.Auth.Login(ctx, email, cmd.Password)
	if err != nil {
		return domainauth.Session{}, err
	}
	if identity.Email == "" {
		identity.Email = email
	}
	s, err := domainauth.NewSession(domainauth.CreateSessionParams{
		ID:     h.newID(),
		Token:  identity.Token,
		UserID: identity.UserID,
		Name:   identity.Name,
		Email:  identity.Email,
		IsHost: identity.IsHost,
		TTL:    h.SessionTTL,
		Now:    h.now(),
	})
	if err != nil {
		return domainauth.Session{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("session opened", "user_id", s.UserID, "is_host", s.IsHost)
	}
	return s, nil
}

func (h *LoginHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *LoginHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[LoginCommand, domainauth.Session] = (*LoginHandler)(nil)
