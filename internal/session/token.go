package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenExpiry reads the exp claim of the access token without
// verifying its signature. It reports false for opaque tokens.
func (c Credentials) AccessTokenExpiry() (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// AccessTokenExpired reports whether the access token is known to be
// expired at now. Tokens without a readable expiry never count as expired.
func (c Credentials) AccessTokenExpired(now time.Time) bool {
	exp, ok := c.AccessTokenExpiry()
	return ok && !now.Before(exp)
}
