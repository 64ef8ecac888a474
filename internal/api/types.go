package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UnmarshalJSON accepts both camelCase and snake_case token fields, since
// deployed backends differ.
func (a *AuthResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal auth response: %w", err)
	}
	a.AccessToken = firstString(raw, "accessToken", "access_token")
	a.RefreshToken = firstString(raw, "refreshToken", "refresh_token")
	return nil
}

// AccessTokenResponse is returned by refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *AccessTokenResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal refresh response: %w", err)
	}
	a.AccessToken = firstString(raw, "accessToken", "access_token")
	return nil
}

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts numeric and string identifiers.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal user: %w", err)
	}
	u.Email = firstString(raw, "email")
	if id, ok := raw["id"]; ok {
		u.ID = strings.Trim(string(id), `"`)
	}
	return nil
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		var s string
		if err := json.Unmarshal(raw[k], &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
