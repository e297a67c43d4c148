package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/habedi/solekit/auth"
	"github.com/habedi/solekit/client"
	"github.com/habedi/solekit/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type mockRefresher struct {
	calls       int
	errToReturn error
}

func (m *mockRefresher) PerformTokenRefresh(_ context.Context, refreshToken string) (session.Credentials, error) {
	m.calls++
	if m.errToReturn != nil {
		return session.Credentials{}, m.errToReturn
	}
	return session.Credentials{AccessToken: "new-access-token", RefreshToken: "new-refresh-token"}, nil
}

func publicClient(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestLogin_StoresWholeSession(t *testing.T) {
	var got map[string]string
	pub := publicClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, auth.LoginPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true,"data":{"accessToken":"A1","refreshToken":"R1",` +
			`"user":{"_id":"u1","name":"Ada","email":"ada@example.com","role":"admin"}}}`))
	})
	store := session.NewMemoryStore(session.Session{})
	svc := auth.NewService(store, pub, &mockRefresher{})

	user, err := svc.Login(context.Background(), " ada@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, "secret", got["password"])
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, user.IsAdmin())

	s, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A1", s.AccessToken)
	assert.Equal(t, "R1", s.RefreshToken)
	assert.Contains(t, string(s.User), "ada@example.com")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	pub := publicClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	})
	store := session.NewMemoryStore(session.Session{})
	svc := auth.NewService(store, pub, &mockRefresher{})

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, client.StatusCode(err))
	assert.Contains(t, err.Error(), "Invalid credentials")

	s, _ := store.Get(context.Background())
	assert.True(t, s.Empty())
}

func TestLogin_RequiresInput(t *testing.T) {
	svc := auth.NewService(session.NewMemoryStore(session.Session{}), nil, nil)
	_, err := svc.Login(context.Background(), "", "x")
	assert.Error(t, err)
	_, err = svc.Login(context.Background(), "a@b.c", "")
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	pub := publicClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, auth.RegisterPath, r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"_id":"u2","name":"Bob","email":"bob@example.com"}}`))
	})
	svc := auth.NewService(session.NewMemoryStore(session.Session{}), pub, nil)

	u, err := svc.Register(context.Background(), auth.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
	assert.False(t, u.IsAdmin())
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	calls := 0
	api := publicClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, auth.LogoutPath, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})
	store := session.NewMemoryStore(session.Session{
		Credentials: session.Credentials{AccessToken: "A1", RefreshToken: "R1"},
		User:        json.RawMessage(`{}`),
	})
	svc := auth.NewService(store, nil, nil)

	require.NoError(t, svc.Logout(context.Background(), api))
	assert.Equal(t, 1, calls)
	s, _ := store.Get(context.Background())
	assert.True(t, s.Empty())
}

func TestLogout_WithoutSessionSkipsServer(t *testing.T) {
	calls := 0
	api := publicClient(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	svc := auth.NewService(session.NewMemoryStore(session.Session{}), nil, nil)

	require.NoError(t, svc.Logout(context.Background(), api))
	assert.Zero(t, calls)
}

func TestStatus(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	store := session.NewMemoryStore(session.Session{
		Credentials: session.Credentials{AccessToken: signedToken(t, exp), RefreshToken: "R1"},
		User:        json.RawMessage(`{"_id":"u1","name":"Ada"}`),
	})
	svc := auth.NewService(store, nil, nil)

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.False(t, st.Expired)
	assert.True(t, exp.Equal(st.ExpiresAt))
	require.NotNil(t, st.User)
	assert.Equal(t, "Ada", st.User.Name)

	require.NoError(t, store.Clear(context.Background()))
	st, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)

	_, err = svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestEnsureFresh_WhenTokenIsValid(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := session.NewMemoryStore(session.Session{Credentials: session.Credentials{AccessToken: access, RefreshToken: "R1"}})
	refresher := &mockRefresher{}
	svc := auth.NewService(store, nil, refresher)

	creds, err := svc.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, access, creds.AccessToken)
	assert.Zero(t, refresher.calls, "refresh should not be called for a valid token")
}

func TestEnsureFresh_WhenTokenIsAboutToExpire(t *testing.T) {
	access := signedToken(t, time.Now().Add(2*time.Minute))
	store := session.NewMemoryStore(session.Session{
		Credentials: session.Credentials{AccessToken: access, RefreshToken: "R1"},
		User:        json.RawMessage(`{"name":"Ada"}`),
	})
	refresher := &mockRefresher{}
	svc := auth.NewService(store, nil, refresher)

	creds, err := svc.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", creds.AccessToken)
	assert.Equal(t, 1, refresher.calls)

	s, _ := store.Get(context.Background())
	assert.Equal(t, "new-refresh-token", s.RefreshToken)
	assert.JSONEq(t, `{"name":"Ada"}`, string(s.User))
}

func TestEnsureFresh_WhenRefreshFails(t *testing.T) {
	access := signedToken(t, time.Now().Add(-time.Hour))
	store := session.NewMemoryStore(session.Session{Credentials: session.Credentials{AccessToken: access, RefreshToken: "R1"}})
	svc := auth.NewService(store, nil, &mockRefresher{errToReturn: errors.New("API is down")})

	_, err := svc.EnsureFresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API is down")

	s, _ := store.Get(context.Background())
	assert.Equal(t, access, s.AccessToken, "a failed proactive refresh leaves the session for the client to handle")
}

func TestEnsureFresh_WhenNoSession(t *testing.T) {
	svc := auth.NewService(session.NewMemoryStore(session.Session{}), nil, &mockRefresher{})
	_, err := svc.EnsureFresh(context.Background())
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestEnsureFresh_OpaqueTokenIsLeftAlone(t *testing.T) {
	store := session.NewMemoryStore(session.Session{Credentials: session.Credentials{AccessToken: "opaque", RefreshToken: "R1"}})
	refresher := &mockRefresher{}
	svc := auth.NewService(store, nil, refresher)

	creds, err := svc.EnsureFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opaque", creds.AccessToken)
	assert.Zero(t, refresher.calls)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	got, err := auth.TokenExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = auth.TokenExpiry("not-a-jwt")
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = auth.TokenExpiry(noExp)
	assert.ErrorIs(t, err, auth.ErrNoExpiry)
}
