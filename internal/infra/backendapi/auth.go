package backendapi

import (
	"context"
	"net/http"

	"roomfront/internal/app/policies"
)

func (c *Client) Login(ctx context.Context, email, password string) (policies.Identity, error) {
	var wire loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, loginRequest{Email: email, Password: password}, &wire); err != nil {
		return policies.Identity{}, err
	}
	token := wire.Token
	if token == "" {
		token = wire.AccessToken
	}
	return policies.Identity{
		Token:  token,
		UserID: string(wire.User.ID),
		Name:   wire.User.Name,
		Email:  wire.User.Email,
		IsHost: wire.User.IsHost,
	}, nil
}

func (c *Client) RegisterHost(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/host/register", token, nil, struct{}{}, nil)
}

var _ policies.AuthPort = (*Client)(nil)
