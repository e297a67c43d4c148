package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		path   string
		want   Notification
		notify bool
	}{
		{
			name: "nil error",
			path: "/api/v1/cart",
		},
		{
			name:   "server message is shown verbatim",
			err:    &Error{Kind: KindStatus, Status: http.StatusBadRequest, Message: "Quantity exceeds stock"},
			path:   "/api/v1/cart",
			want:   Notification{Message: "Quantity exceeds stock", Status: http.StatusBadRequest},
			notify: true,
		},
		{
			name:   "status without message",
			err:    &Error{Kind: KindStatus, Status: http.StatusBadGateway},
			path:   "/api/v1/orders",
			want:   Notification{Message: "Request failed with status 502.", Status: http.StatusBadGateway},
			notify: true,
		},
		{
			name: "401 is left to the refresh flow",
			err:  &Error{Kind: KindStatus, Status: http.StatusUnauthorized, Message: "Token expired"},
			path: "/api/v1/cart",
		},
		{
			name:   "no response",
			err:    &Error{Kind: KindTransport, Err: context.DeadlineExceeded},
			path:   "/api/v1/products",
			want:   Notification{Message: MsgNoResponse},
			notify: true,
		},
		{
			name:   "setup failure",
			err:    &Error{Kind: KindSetup, Err: errors.New("bad body")},
			path:   "/api/v1/products",
			want:   Notification{Message: MsgSetupFailed},
			notify: true,
		},
		{
			name:   "undecodable body",
			err:    &Error{Kind: KindDecode, Status: http.StatusOK},
			path:   "/api/v1/products",
			want:   Notification{Message: MsgUnexpectedResponse, Status: http.StatusOK},
			notify: true,
		},
		{
			name:   "foreign error",
			err:    errors.New("something else"),
			path:   "/api/v1/products",
			want:   Notification{Message: MsgSetupFailed},
			notify: true,
		},
		{
			name: "login failures are owned by the caller",
			err:  &Error{Kind: KindStatus, Status: http.StatusBadRequest, Message: "Invalid credentials"},
			path: "/api/v1/auth/login",
		},
		{
			name: "allow-list ignores status",
			err:  &Error{Kind: KindStatus, Status: http.StatusInternalServerError},
			path: "/api/v1/payments/ipn?vnp_TxnRef=42",
		},
		{
			name: "allow-list ignores transport failures",
			err:  &Error{Kind: KindTransport},
			path: "/api/v1/auth/logout",
		},
		{
			name: "terminal session failure has its own notice",
			err:  &sessionExpiredError{reason: "no refresh token"},
			path: "/api/v1/cart",
		},
		{
			name: "wrapped session failure",
			err:  fmt.Errorf("load cart: %w", ErrSessionExpired),
			path: "/api/v1/cart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decide(tt.err, tt.path, DefaultAllowList)
			assert.Equal(t, tt.notify, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuppressed(t *testing.T) {
	assert.True(t, Suppressed("/api/v1/auth/login", DefaultAllowList))
	assert.True(t, Suppressed("/shop/api/v1/payments/callback/vnpay", DefaultAllowList))
	assert.False(t, Suppressed("/api/v1/auth/register", DefaultAllowList))
	assert.False(t, Suppressed("/api/v1/cart?next=/api/v1/auth/login", DefaultAllowList))
	assert.False(t, Suppressed("/api/v1/auth/login", nil))
	assert.False(t, Suppressed("/api/v1/cart", []string{""}))
}

func TestNotifierAdapters(t *testing.T) {
	var got Notification
	NotifierFunc(func(n Notification) { got = n }).Notify(Notification{Message: "hi"})
	assert.Equal(t, "hi", got.Message)

	var reason string
	RedirectorFunc(func(r string) { reason = r }).RedirectToLogin("expired")
	assert.Equal(t, "expired", reason)
}
