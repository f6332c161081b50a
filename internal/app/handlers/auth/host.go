package auth

import (
	"context"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/policies"
	domainauth "roomfront/internal/domain/auth"
)

const (
	registerHostKey = "auth.host.register"
	setHostModeKey  = "auth.host.mode"
	logoutKey       = "auth.logout"
)

// RegisterHostCommand upgrades the signed-in user to host and turns host mode on.
type RegisterHostCommand struct{}

func (c RegisterHostCommand) Key() string { return registerHostKey }

func (c RegisterHostCommand) Access() domainauth.Access { return domainauth.AccessMember }

type RegisterHostHandler struct {
	Auth policies.AuthPort
}

func (h *RegisterHostHandler) Handle(ctx context.Context, _ RegisterHostCommand) (domainauth.Session, error) {
	s, ok := domainauth.FromContext(ctx)
	if !ok {
		return domainauth.Session{}, domainauth.ErrUnauthenticated
	}
	if s.IsHost {
		return s.WithHostMode(true)
	}
	if err := h.Auth.RegisterHost(ctx, s.Token); err != nil {
		return domainauth.Session{}, err
	}
	return s.PromoteToHost(), nil
}

type SetHostModeCommand struct {
	On bool
}

func (c SetHostModeCommand) Key() string { return setHostModeKey }

func (c SetHostModeCommand) Access() domainauth.Access { return domainauth.AccessMember }

// SetHostModeHandler switches between the guest and host views. Leaving host
// mode drops the calendar selection.
type SetHostModeHandler struct {
	Selections SelectionDropper
}

func (h *SetHostModeHandler) Handle(ctx context.Context, cmd SetHostModeCommand) (domainauth.Session, error) {
	s, ok := domainauth.FromContext(ctx)
	if !ok {
		return domainauth.Session{}, domainauth.ErrUnauthenticated
	}
	next, err := s.WithHostMode(cmd.On)
	if err != nil {
		return domainauth.Session{}, err
	}
	if !cmd.On && h.Selections != nil {
		h.Selections.Drop(s.ID)
	}
	return next, nil
}

// SelectionDropper forgets a session's calendar selection.
type SelectionDropper interface {
	Drop(sessionID string)
}

type LogoutCommand struct{}

func (c LogoutCommand) Key() string { return logoutKey }

type LogoutHandler struct {
	Selections SelectionDropper
}

func (h *LogoutHandler) Handle(ctx context.Context, _ LogoutCommand) (struct{}, error) {
	if s, ok := domainauth.FromContext(ctx); ok && h.Selections != nil {
		h.Selections.Drop(s.ID)
	}
	return struct{}{}, nil
}

var (
	_ commands.Handler[RegisterHostCommand, domainauth.Session] = (*RegisterHostHandler)(nil)
	_ commands.Handler[SetHostModeCommand, domainauth.Session]  = (*SetHostModeHandler)(nil)
	_ commands.Handler[LogoutCommand, struct{}]                 = (*LogoutHandler)(nil)
)
