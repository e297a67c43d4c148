// Package client is the HTTP layer between solekit and the store API.
//
// Client issues requests to public endpoints without credentials. AuthClient
// attaches the stored bearer token to every request and, on a 401, refreshes
// the token pair once and retries the original request exactly once. When the
// refresh is impossible or fails the stored session is cleared and the user is
// sent back to the login entry point.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every single attempt, including the refresh call.
const DefaultTimeout = 15 * time.Second

// Doer is satisfied by both Client and AuthClient.
type Doer interface {
	Do(ctx context.Context, r *Request, out any) error
}

// Client performs unauthenticated calls. It never retries and never notifies.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient sends requests through a copy of hc, so later options such
// as WithTimeout do not modify the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client rooted at baseURL (scheme and host, optionally a path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "solekit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// Do sends r and decodes a successful JSON response into out (which may be nil).
// Failures are returned as *Error without any side effect.
func (c *Client) Do(ctx context.Context, r *Request, out any) error {
	p, err := c.prepare(r)
	if err != nil {
		return err
	}
	return c.execute(ctx, p, "", out)
}
