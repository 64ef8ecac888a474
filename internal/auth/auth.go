// Package auth runs the sign-up and sign-in flows: validate, build the
// payload, send it and record the issued credentials. It is the only code
// that changes the session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kozaktomas/face-auth/internal/api"
	"github.com/kozaktomas/face-auth/internal/payload"
	"github.com/kozaktomas/face-auth/internal/session"
	"github.com/kozaktomas/face-auth/internal/validation"
)

// ErrNotSignedIn is returned by flows that need stored credentials.
var ErrNotSignedIn = errors.New("not signed in")

// Transport is the subset of the API client the flows use.
type Transport interface {
	Register(ctx context.Context, p *payload.Payload) (*api.AuthResponse, error)
	Login(ctx context.Context, p *payload.Payload) (*api.AuthResponse, error)
	Refresh(ctx context.Context, p *payload.Payload) (*api.AccessTokenResponse, error)
	Me(ctx context.Context) (*api.User, error)
	InvalidateAll()
}

// Service wires validation, transport and session together.
type Service struct {
	schema *validation.Schema
	client Transport
	store  *session.Store
	now    func() time.Time
}

// NewService creates a Service.
func NewService(schema *validation.Schema, client Transport, store *session.Store) *Service {
	return &Service{schema: schema, client: client, store: store, now: time.Now}
}

// Register validates the form and creates the account. Client-side and
// server-side field errors both come back as violations in the result,
// with a nil error.
func (s *Service) Register(ctx context.Context, in validation.RegistrationInput) (validation.Result[session.Credentials], error) {
	res := s.schema.Registration(in)
	if !res.Accepted() {
		return validation.Result[session.Credentials]{Violations: res.Violations}, nil
	}

	p, err := payload.Registration(res)
	if err != nil {
		return validation.Result[session.Credentials]{}, err
	}

	resp, err := s.client.Register(ctx, p)
	return s.signIn(ctx, res.Value.Email, resp, err)
}

// Login validates the form and signs in with a password or a face image.
func (s *Service) Login(ctx context.Context, in validation.LoginInput) (validation.Result[session.Credentials], error) {
	res := s.schema.Login(in)
	if !res.Accepted() {
		return validation.Result[session.Credentials]{Violations: res.Violations}, nil
	}

	p, err := payload.Login(res)
	if err != nil {
		return validation.Result[session.Credentials]{}, err
	}

	resp, err := s.client.Login(ctx, p)
	return s.signIn(ctx, res.Value.Email, resp, err)
}

func (s *Service) signIn(ctx context.Context, email string, resp *api.AuthResponse, err error) (validation.Result[session.Credentials], error) {
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.HasViolations() {
		return validation.Result[session.Credentials]{Violations: apiErr.Violations()}, nil
	}
	if err != nil {
		return validation.Result[session.Credentials]{}, err
	}
	if resp.AccessToken == "" {
		return validation.Result[session.Credentials]{}, errors.New("server did not return an access token")
	}

	creds := session.Credentials{
		Email:        email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if err := s.store.Set(ctx, creds); err != nil {
		return validation.Result[session.Credentials]{}, err
	}
	s.client.InvalidateAll()

	return validation.Result[session.Credentials]{Value: creds}, nil
}

// Logout forgets the stored credentials.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.client.InvalidateAll()
	return nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context) (session.Credentials, error) {
	creds, ok := s.store.Credentials()
	if !ok {
		return session.Credentials{}, ErrNotSignedIn
	}
	if creds.RefreshToken == "" {
		return session.Credentials{}, errors.New("no refresh token stored")
	}

	p, err := payload.Refresh(creds.RefreshToken)
	if err != nil {
		return session.Credentials{}, err
	}

	resp, err := s.client.Refresh(ctx, p)
	if err != nil {
		return session.Credentials{}, fmt.Errorf("refresh access token: %w", err)
	}
	if resp.AccessToken == "" {
		return session.Credentials{}, errors.New("server did not return an access token")
	}
	if err := s.store.SetAccessToken(ctx, resp.AccessToken); err != nil {
		return session.Credentials{}, err
	}
	s.client.InvalidateAll()

	creds.AccessToken = resp.AccessToken
	return creds, nil
}

// Me returns the signed-in user. An access token that has expired, or is
// rejected with 401, is refreshed once when a refresh token is stored.
func (s *Service) Me(ctx context.Context) (*api.User, error) {
	creds, ok := s.store.Credentials()
	if !ok {
		return nil, ErrNotSignedIn
	}

	refreshed := false
	if creds.RefreshToken != "" && creds.AccessTokenExpired(s.now()) {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		refreshed = true
	}

	user, err := s.client.Me(ctx)
	if apiErr, ok := api.AsAPIError(err); ok && apiErr.Status == http.StatusUnauthorized && !refreshed && creds.RefreshToken != "" {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		return s.client.Me(ctx)
	}
	return user, err
}

// Credentials returns the stored credentials, if any.
func (s *Service) Credentials() (session.Credentials, bool) {
	return s.store.Credentials()
}
