package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refreshServer(t *testing.T, status int, body string) (*HTTPRefresher, *string) {
	t.Helper()
	var sent string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, RefreshPath, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var req refreshRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = req.RefreshToken
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	return NewHTTPRefresher(c), &sent
}

func TestHTTPRefresher_Success(t *testing.T) {
	r, sent := refreshServer(t, http.StatusOK, `{"success":true,"data":{"accessToken":"A2","refreshToken":"R2"}}`)

	got, err := r.PerformTokenRefresh(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", *sent)
	assert.Equal(t, "A2", got.AccessToken)
	assert.Equal(t, "R2", got.RefreshToken)
}

func TestHTTPRefresher_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	r, _ := refreshServer(t, http.StatusOK, `{"success":true,"data":{"accessToken":"A2"}}`)

	got, err := r.PerformTokenRefresh(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", got.RefreshToken)
}

func TestHTTPRefresher_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		rejected bool
	}{
		{"success false", http.StatusOK, `{"success":false,"message":"Refresh token revoked"}`, true},
		{"no access token", http.StatusOK, `{"success":true,"data":{}}`, true},
		{"expired refresh token", http.StatusUnauthorized, `{"success":false,"message":"Invalid refresh token"}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := refreshServer(t, tt.status, tt.body)
			_, err := r.PerformTokenRefresh(context.Background(), "R1")
			require.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrRefreshRejected))
		})
	}
}

func TestHTTPRefresher_EmptyToken(t *testing.T) {
	r := NewHTTPRefresher(nil)
	_, err := r.PerformTokenRefresh(context.Background(), "")
	assert.Error(t, err)
}
