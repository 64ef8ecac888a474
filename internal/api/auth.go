package api

import (
	"context"

	"github.com/kozaktomas/face-auth/internal/payload"
)

const (
	endpointRegister = "register"
	endpointLogin    = "login"
	endpointRefresh  = "refresh"
	endpointMe       = "me"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, p *payload.Payload) (*AuthResponse, error) {
	return mutate[AuthResponse](ctx, c, "register", endpointRegister, p, c.format)
}

// Login authenticates with a password or a face image.
func (c *Client) Login(ctx context.Context, p *payload.Payload) (*AuthResponse, error) {
	return mutate[AuthResponse](ctx, c, "login", endpointLogin, p, c.format)
}

// Refresh exchanges a refresh token for a new access token. The body is
// always JSON.
func (c *Client) Refresh(ctx context.Context, p *payload.Payload) (*AccessTokenResponse, error) {
	return mutate[AccessTokenResponse](ctx, c, "refresh", endpointRefresh, p, payload.FormatJSON)
}

// Me returns the user the current access token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	return query[User](ctx, c, endpointMe, nil)
}

// InvalidateMe drops the cached user so the next Me call refetches it.
func (c *Client) InvalidateMe() {
	c.Invalidate(endpointMe)
}
