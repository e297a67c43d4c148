// Package session holds the client-side login state: the access/refresh
// credential pair and the cached user profile. All three values are created
// and removed together.
package session

import (
	"context"
	"encoding/json"
)

// Credentials is the bearer token pair issued on login and on every refresh.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is everything persisted for a logged-in user.
type Session struct {
	Credentials
	User json.RawMessage `json:"user,omitempty"`
}

// Empty reports whether no credential of any kind is stored.
func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && len(s.User) == 0
}

// Store is the only shared mutable state of the HTTP client. Implementations
// must be safe for concurrent use; concurrent writers race with last write wins.
type Store interface {
	// Get returns the stored session, or a zero Session when nothing is stored.
	Get(ctx context.Context) (Session, error)
	// Set replaces the whole session.
	Set(ctx context.Context, s Session) error
	// SetCredentials replaces the token pair and keeps the cached user.
	SetCredentials(ctx context.Context, c Credentials) error
	// Clear removes access token, refresh token and user in one step.
	Clear(ctx context.Context) error
}
