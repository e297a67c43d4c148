package client

import (
	"context"
	"errors"

	"github.com/habedi/solekit/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RefreshMode selects how concurrent 401s are turned into refresh calls.
type RefreshMode int

const (
	// RefreshPerRequest lets every rejected request run its own refresh call.
	// Concurrent refreshes race on the store and the last write wins.
	RefreshPerRequest RefreshMode = iota
	// RefreshCoalesced shares one in-flight refresh among all requests that
	// were rejected while holding the same refresh token.
	RefreshCoalesced
)

// ParseRefreshMode maps "per-request" and "coalesced" to a RefreshMode.
func ParseRefreshMode(s string) (RefreshMode, error) {
	switch s {
	case "", "per-request":
		return RefreshPerRequest, nil
	case "coalesced":
		return RefreshCoalesced, nil
	default:
		return RefreshPerRequest, errors.New("refresh mode must be per-request or coalesced")
	}
}

// AuthClient performs calls that require a bearer credential.
type AuthClient struct {
	base       *Client
	store      session.Store
	refresher  Refresher
	notifier   Notifier
	redirector Redirector
	allowList  []string
	mode       RefreshMode
	inflight   singleflight.Group
}

// AuthOption configures an AuthClient.
type AuthOption func(*AuthClient)

// WithNotifier sets the sink for user-visible notifications.
func WithNotifier(n Notifier) AuthOption {
	return func(c *AuthClient) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithRedirector sets the login redirect target.
func WithRedirector(r Redirector) AuthOption {
	return func(c *AuthClient) {
		if r != nil {
			c.redirector = r
		}
	}
}

// WithAllowList replaces DefaultAllowList.
func WithAllowList(paths []string) AuthOption {
	return func(c *AuthClient) { c.allowList = append([]string(nil), paths...) }
}

// WithRefreshMode selects the refresh mode.
func WithRefreshMode(m RefreshMode) AuthOption {
	return func(c *AuthClient) { c.mode = m }
}

// NewAuthClient wraps base with credential injection and the refresh protocol.
func NewAuthClient(base *Client, store session.Store, refresher Refresher, opts ...AuthOption) *AuthClient {
	c := &AuthClient{
		base:       base,
		store:      store,
		refresher:  refresher,
		notifier:   logNotifier{},
		redirector: logRedirector{},
		allowList:  append([]string(nil), DefaultAllowList...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// callState belongs to one logical call and is never shared between calls.
type callState struct {
	retried bool
}

// Do sends r with the stored access token. On the first 401 it refreshes the
// token pair and re-sends r once with the new access token; the caller sees
// only the outcome of that retry. Every other failure is reported through the
// notifier (unless allow-listed) and returned.
func (c *AuthClient) Do(ctx context.Context, r *Request, out any) error {
	p, err := c.base.prepare(r)
	if err != nil {
		path := ""
		if r != nil {
			path = r.Path
		}
		c.report(path, err)
		return err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		setupErr := &Error{Kind: KindSetup, Method: p.method, Path: p.path, Err: err}
		c.report(p.path, setupErr)
		return setupErr
	}

	state := &callState{}
	for {
		err := c.base.execute(ctx, p, token, out)
		switch {
		case err == nil:
			return nil
		case !IsUnauthorized(err):
			c.report(p.path, err)
			return err
		case state.retried:
			log.Warn().Str("path", p.path).Msg("Request rejected again after token refresh")
			return c.terminate(ctx, "request rejected after token refresh", err)
		}

		state.retried = true
		creds, err := c.recoverSession(ctx, p.method, p.path, err)
		if err != nil {
			return err
		}
		token = creds.AccessToken
	}
}

func (c *AuthClient) accessToken(ctx context.Context) (string, error) {
	s, err := c.store.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read stored session")
		return "", err
	}
	return s.AccessToken, nil
}

// recoverSession runs the refresh half of the protocol. It returns the new
// credentials, or the terminal error after the session has been torn down.
// A caller whose own context ends while waiting gets a transport error and
// the session is left alone.
func (c *AuthClient) recoverSession(ctx context.Context, method, path string, cause error) (session.Credentials, error) {
	s, err := c.store.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read stored session for refresh")
		return session.Credentials{}, c.terminate(ctx, "stored session unreadable", err)
	}
	if s.RefreshToken == "" {
		log.Info().Str("path", path).Msg("Access token rejected and no refresh token stored")
		return session.Credentials{}, c.terminate(ctx, "no refresh token", cause)
	}

	log.Info().Str("path", path).Msg("Access token rejected, refreshing")
	creds, err := c.refresh(ctx, s.RefreshToken)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		log.Debug().Err(err).Str("path", path).Msg("Gave up waiting for token refresh")
		return session.Credentials{}, &Error{Kind: KindTransport, Method: method, Path: path, Err: ctx.Err()}
	}
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh failed")
		return session.Credentials{}, c.terminate(ctx, "token refresh failed", err)
	}

	if err := c.store.SetCredentials(ctx, creds); err != nil {
		// The new pair is still good for the retry.
		log.Error().Err(err).Msg("Failed to persist refreshed credentials")
	} else {
		log.Info().Msg("Token refreshed and saved successfully.")
	}
	return creds, nil
}

func (c *AuthClient) refresh(ctx context.Context, refreshToken string) (session.Credentials, error) {
	if c.refresher == nil {
		return session.Credentials{}, errors.New("no token refresher configured")
	}
	if c.mode != RefreshCoalesced {
		return c.refresher.PerformTokenRefresh(ctx, refreshToken)
	}

	// The shared call must outlive any single waiter's cancellation.
	ch := c.inflight.DoChan(refreshToken, func() (any, error) {
		return c.refresher.PerformTokenRefresh(context.WithoutCancel(ctx), refreshToken)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return session.Credentials{}, res.Err
		}
		return res.Val.(session.Credentials), nil
	case <-ctx.Done():
		return session.Credentials{}, ctx.Err()
	}
}

// terminate clears the stored session, shows the session-expired notice and
// redirects to login. It always returns an error matching ErrSessionExpired.
func (c *AuthClient) terminate(ctx context.Context, reason string, cause error) error {
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("Failed to clear stored session")
	}
	c.notifier.Notify(Notification{Message: MsgSessionExpired, Status: StatusCode(cause), Session: true})
	c.redirector.RedirectToLogin(reason)
	return &sessionExpiredError{reason: reason, cause: cause}
}

func (c *AuthClient) report(path string, err error) {
	if n, ok := Decide(err, path, c.allowList); ok {
		c.notifier.Notify(n)
	}
}
