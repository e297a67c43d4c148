// Package auth manages the login session: creating it, inspecting it,
// refreshing it ahead of expiry and ending it.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habedi/solekit/client"
	"github.com/habedi/solekit/session"
	"github.com/rs/zerolog/log"
)

const (
	LoginPath    = "/api/v1/auth/login"
	LogoutPath   = "/api/v1/auth/logout"
	RegisterPath = "/api/v1/auth/register"
)

// ErrNotLoggedIn is returned when an operation needs a stored session.
var ErrNotLoggedIn = errors.New("not logged in; please login first")

// User is the cached profile returned on login.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsAdmin reports whether the user may use the admin endpoints.
func (u *User) IsAdmin() bool { return u != nil && strings.EqualFold(u.Role, "admin") }

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Status describes the stored session.
type Status struct {
	LoggedIn  bool
	User      *User
	ExpiresAt time.Time // zero when the token carries no expiry
	Expired   bool
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
}

// Service ties the session store to the public auth endpoints.
type Service struct {
	Store     session.Store
	Public    client.Doer
	Refresher client.Refresher

	now func() time.Time
}

// NewService is the constructor for the auth service.
func NewService(store session.Store, public client.Doer, refresher client.Refresher) *Service {
	return &Service{Store: store, Public: public, Refresher: refresher, now: time.Now}
}

// Login exchanges email and password for a session and stores all of it.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	var env client.Envelope[loginData]
	if err := s.Public.Do(ctx, client.Post(LoginPath, loginRequest{Email: email, Password: password}), &env); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if !env.Success || env.Data.AccessToken == "" {
		msg := env.Message
		if msg == "" {
			msg = "no access token in response"
		}
		return nil, fmt.Errorf("login failed: %s", msg)
	}

	sess := session.Session{
		Credentials: session.Credentials{AccessToken: env.Data.AccessToken, RefreshToken: env.Data.RefreshToken},
		User:        env.Data.User,
	}
	if err := s.Store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	log.Info().Str("email", email).Msg("Logged in")
	return decodeUser(env.Data.User)
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, errors.New("name, email and password are required")
	}
	var env client.Envelope[json.RawMessage]
	if err := s.Public.Do(ctx, client.Post(RegisterPath, in), &env); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("registration failed: %s", env.Message)
	}
	return decodeUser(env.Data)
}

// Logout tells the server to revoke the refresh token when api is given and
// then clears the local session regardless of the server's answer.
func (s *Service) Logout(ctx context.Context, api client.Doer) error {
	sess, err := s.Store.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read session before logout")
	}
	if api != nil && !sess.Empty() {
		body := map[string]string{"refreshToken": sess.RefreshToken}
		if err := api.Do(ctx, client.Post(LogoutPath, body), nil); err != nil {
			log.Warn().Err(err).Msg("Server-side logout failed; clearing local session anyway")
		}
	}
	if err := s.Store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Info().Msg("Logged out")
	return nil
}

// Status reports whether a session is stored and when its access token expires.
func (s *Service) Status(ctx context.Context) (Status, error) {
	sess, err := s.Store.Get(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read session: %w", err)
	}
	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return Status{}, nil
	}

	st := Status{LoggedIn: true}
	if len(sess.User) > 0 {
		u, err := decodeUser(sess.User)
		if err != nil {
			log.Warn().Err(err).Msg("Cached user profile is unreadable")
		} else {
			st.User = u
		}
	}
	if exp, err := TokenExpiry(sess.AccessToken); err == nil {
		st.ExpiresAt = exp
		st.Expired = !s.clock().Before(exp)
	}
	return st, nil
}

// CurrentUser returns the cached profile.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !st.LoggedIn || st.User == nil {
		return nil, ErrNotLoggedIn
	}
	return st.User, nil
}

// EnsureFresh refreshes the token pair when the access token expires within
// RefreshSkew. Tokens without a readable expiry are returned unchanged.
func (s *Service) EnsureFresh(ctx context.Context) (session.Credentials, error) {
	sess, err := s.Store.Get(ctx)
	if err != nil {
		return session.Credentials{}, fmt.Errorf("failed to retrieve session: %w", err)
	}
	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return session.Credentials{}, ErrNotLoggedIn
	}
	if isTokenFresh(sess.AccessToken, s.clock()) {
		return sess.Credentials, nil
	}
	if sess.RefreshToken == "" {
		log.Debug().Msg("Access token is stale but no refresh token is stored")
		return sess.Credentials, nil
	}

	log.Info().Msg("Access token expired or about to expire, refreshing...")
	creds, err := s.Refresher.PerformTokenRefresh(ctx, sess.RefreshToken)
	if err != nil {
		return session.Credentials{}, fmt.Errorf("failed to perform token refresh: %w", err)
	}
	if err := s.Store.SetCredentials(ctx, creds); err != nil {
		return session.Credentials{}, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	log.Info().Msg("Token refreshed and saved successfully.")
	return creds, nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func decodeUser(raw json.RawMessage) (*User, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}
	return &u, nil
}
