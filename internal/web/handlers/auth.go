package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/validation"
	"github.com/kozaktomas/face-auth/internal/web/middleware"
)

const (
	msgNoCredentials   = "Either password or image_data must be provided for authentication"
	msgBothCredentials = "Cannot provide both password and image_data. Choose one authentication method"
	msgInvalidCreds    = "Invalid credentials"
	msgUserExists      = "User already exists"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	config *config.Config
	users  *UserStore
	tokens *middleware.TokenManager
	schema *validation.Schema
}

// NewAuthHandler creates a new auth handler. Requests are validated with the
// same rules the client applies.
func NewAuthHandler(cfg *config.Config, users *UserStore, tokens *middleware.TokenManager) *AuthHandler {
	limits := validation.LimitsFromConfig(&cfg.Limits)
	return &AuthHandler{
		config: cfg,
		users:  users,
		tokens: tokens,
		schema: validation.NewSchema(limits, validation.WithImageInspection(cfg.Limits.InspectImages)),
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

type accessToken struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, image, err := parseCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	in := validation.RegistrationInput{
		Email:           form.Email,
		ConfirmPassword: form.ConfirmPassword,
		Image:           image,
	}
	if form.Password != nil {
		in.Password = *form.Password
	}

	res := h.schema.Registration(in)
	if !res.Accepted() {
		respondViolations(w, res.Violations)
		return
	}

	u, err := h.users.create(res.Value.Email, res.Value.Password, res.Value.Image.Data)
	if errors.Is(err, errUserExists) {
		respondError(w, http.StatusBadRequest, msgUserExists)
		return
	}
	if err != nil {
		log.Printf("register %s: %v", sanitizeForLog(res.Value.Email), err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	log.Printf("registered user %s", sanitizeForLog(u.Email))
	h.issuePair(w, http.StatusCreated, u.ID)
}

// Login signs in with exactly one of password or face image.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, image, err := parseCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	res := h.schema.Login(validation.LoginInput{
		Email:    form.Email,
		Password: form.Password,
		Image:    image,
	})
	if !res.Accepted() {
		respondViolations(w, res.Violations)
		return
	}

	in := res.Value
	switch {
	case in.Password == nil && in.Image == nil:
		respondViolations(w, []validation.Violation{{Message: msgNoCredentials}})
		return
	case in.Password != nil && in.Image != nil:
		respondViolations(w, []validation.Violation{{Message: msgBothCredentials}})
		return
	}

	var (
		u  *user
		ok bool
	)
	if in.Password != nil {
		u, ok = h.users.authenticatePassword(in.Email, *in.Password)
	} else {
		u, ok = h.users.authenticateFace(in.Email, in.Image.Data)
	}
	if !ok {
		respondError(w, http.StatusUnauthorized, msgInvalidCreds)
		return
	}

	h.issuePair(w, http.StatusOK, u.ID)
}

// Refresh exchanges a refresh token for a new access token. The token is
// read from the JSON body or, failing that, the Authorization header.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
		Snake        string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	token := req.RefreshToken
	if token == "" {
		token = req.Snake
	}
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Refresh token required")
		return
	}

	userID, err := h.tokens.Validate(token, middleware.KindRefresh)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	if _, ok := h.users.get(userID); !ok {
		respondError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	access, err := h.tokens.Issue(userID, middleware.KindAccess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondJSON(w, http.StatusOK, accessToken{AccessToken: access, TokenType: "bearer"})
}

// Me returns the account behind the access token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.users.get(middleware.GetUserIDFromContext(r.Context()))
	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, userResponse{ID: u.ID, Email: u.Email})
}

func (h *AuthHandler) issuePair(w http.ResponseWriter, status int, userID string) {
	access, err := h.tokens.Issue(userID, middleware.KindAccess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refresh, err := h.tokens.Issue(userID, middleware.KindRefresh)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	respondJSON(w, status, tokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
}
