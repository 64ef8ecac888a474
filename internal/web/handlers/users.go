package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errUserExists = errors.New("user already exists")

type user struct {
	ID           string
	Email        string
	PasswordHash []byte
	FaceDigest   [sha256.Size]byte
}

// UserStore keeps registered accounts in memory.
type UserStore struct {
	mu         sync.RWMutex
	byEmail    map[string]*user
	byID       map[string]*user
	bcryptCost int
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		byEmail:    make(map[string]*user),
		byID:       make(map[string]*user),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *UserStore) create(email, password string, face []byte) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, errUserExists
	}

	u := &user{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FaceDigest:   sha256.Sum256(face),
	}
	s.byEmail[email] = u
	s.byID[u.ID] = u
	return u, nil
}

func (s *UserStore) get(id string) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	return u, ok
}

// authenticatePassword returns the user when the password matches.
func (s *UserStore) authenticatePassword(email, password string) (*user, bool) {
	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

// authenticateFace returns the user when the image is the one registered.
// Recognition is an exact digest match.
func (s *UserStore) authenticateFace(email string, face []byte) (*user, bool) {
	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	digest := sha256.Sum256(face)
	if subtle.ConstantTimeCompare(digest[:], u.FaceDigest[:]) != 1 {
		return nil, false
	}
	return u, true
}
