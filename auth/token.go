package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshSkew is how long before expiry an access token is considered stale.
const RefreshSkew = 5 * time.Minute

// ErrNoExpiry is returned for tokens that carry no exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The client never holds the signing key; the server stays the authority.
func TokenExpiry(raw string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// isTokenFresh reports whether raw stays valid for at least RefreshSkew after now.
// Opaque tokens are treated as fresh and left to the server to reject.
func isTokenFresh(raw string, now time.Time) bool {
	if raw == "" {
		return false
	}
	exp, err := TokenExpiry(raw)
	if err != nil {
		return true
	}
	return now.Add(RefreshSkew).Before(exp)
}
