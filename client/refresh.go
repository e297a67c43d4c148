package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/habedi/solekit/session"
)

// RefreshPath is the token refresh endpoint.
const RefreshPath = "/api/v1/auth/refresh-token"

// Refresher exchanges a refresh token for a new credential pair.
type Refresher interface {
	PerformTokenRefresh(ctx context.Context, refreshToken string) (session.Credentials, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (session.Credentials, error)

func (f RefresherFunc) PerformTokenRefresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	return f(ctx, refreshToken)
}

// ErrRefreshRejected is returned when the refresh endpoint answers 2xx with a
// non-success payload.
var ErrRefreshRejected = errors.New("token refresh rejected")

// HTTPRefresher calls the refresh endpoint through an unauthenticated client.
type HTTPRefresher struct {
	Client *Client
	Path   string
}

// NewHTTPRefresher returns a refresher posting to RefreshPath.
func NewHTTPRefresher(c *Client) *HTTPRefresher {
	return &HTTPRefresher{Client: c, Path: RefreshPath}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// PerformTokenRefresh posts the refresh token and returns the new pair. A
// response without a new refresh token keeps the one that was sent.
func (r *HTTPRefresher) PerformTokenRefresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	if refreshToken == "" {
		return session.Credentials{}, errors.New("refresh token is empty")
	}
	path := r.Path
	if path == "" {
		path = RefreshPath
	}

	var env Envelope[session.Credentials]
	if err := r.Client.Do(ctx, Post(path, refreshRequest{RefreshToken: refreshToken}), &env); err != nil {
		return session.Credentials{}, fmt.Errorf("token refresh request failed: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return session.Credentials{}, fmt.Errorf("%w: %s", ErrRefreshRejected, env.Message)
		}
		return session.Credentials{}, ErrRefreshRejected
	}
	if env.Data.AccessToken == "" {
		return session.Credentials{}, fmt.Errorf("%w: response carried no access token", ErrRefreshRejected)
	}
	creds := env.Data
	if creds.RefreshToken == "" {
		creds.RefreshToken = refreshToken
	}
	return creds, nil
}
