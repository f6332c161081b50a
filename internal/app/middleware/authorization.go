package middleware

import (
	"context"

	"roomfront/internal/app/commands"
	"roomfront/internal/app/queries"
	"roomfront/internal/domain/auth"
)

// Gated is implemented by messages that sit behind a login or host-mode gate.
// Messages that do not implement it are public.
type Gated interface {
	Access() auth.Access
}

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// SessionAuthorizer checks the session stored in the context against the
// message's access level.
type SessionAuthorizer struct{}

func (SessionAuthorizer) Authorize(ctx context.Context, message any) error {
	gated, ok := message.(Gated)
	if !ok {
		return nil
	}
	session, found := auth.FromContext(ctx)
	return gated.Access().Check(session, found)
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

var _ Authorizer = SessionAuthorizer{}
