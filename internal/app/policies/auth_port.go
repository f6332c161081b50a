package policies

import "context"

// Identity is what the backend returns for a successful login.
type Identity struct {
	Token  string
	UserID string
	Name   string
	Email  string
	IsHost bool
}

type AuthPort interface {
	Login(ctx context.Context, email, password string) (Identity, error)
	RegisterHost(ctx context.Context, token string) error
}
