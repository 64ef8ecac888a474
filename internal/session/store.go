// Package session owns the signed-in user's credentials. A Store is created
// once per process, read by the API transport through TokenSource and
// changed only by the auth flows.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/database"
)

// ErrNotFound is returned by a backend when nothing is stored under a key.
var ErrNotFound = database.ErrNotFound

// Backend persists the encoded session state.
type Backend = database.KVStore

// Credentials are the tokens issued for a signed-in user.
type Credentials struct {
	Email        string `yaml:"email"`
	AccessToken  string `yaml:"accessToken"`
	RefreshToken string `yaml:"refreshToken"`
}

type persistedState struct {
	State struct {
		User *Credentials `yaml:"user"`
	} `yaml:"state"`
	Version int `yaml:"version"`
}

// Store holds the current credentials and mirrors every change to its backend.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	key     string
	user    *Credentials
}

// NewStore restores any persisted credentials from backend.
func NewStore(ctx context.Context, backend Backend, key string) (*Store, error) {
	if key == "" {
		key = constants.SessionKey
	}
	s := &Store{backend: backend, key: key}

	data, err := backend.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}

	var st persistedState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("could not decode session: %w", err)
	}
	s.user = st.State.User
	return s, nil
}

// Credentials returns a copy of the current credentials.
func (s *Store) Credentials() (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Credentials{}, false
	}
	return *s.user, true
}

// AccessToken returns the current access token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.AccessToken
}

// Set replaces the credentials and persists them.
func (s *Store) Set(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, &c); err != nil {
		return err
	}
	s.user = &c
	return nil
}

// SetAccessToken replaces only the access token of the signed-in user.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return errors.New("not signed in")
	}
	next := *s.user
	next.AccessToken = token
	if err := s.persist(ctx, &next); err != nil {
		return err
	}
	s.user = &next
	return nil
}

// Clear signs the user out and removes the persisted state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}
	s.user = nil
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) persist(ctx context.Context, c *Credentials) error {
	var st persistedState
	st.State.User = c
	st.Version = constants.SessionStateVersion

	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}
	return nil
}
