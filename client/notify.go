package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// User-facing messages for failures that carry no server message.
const (
	MsgNoResponse         = "Cannot reach the server. Please check your connection."
	MsgSetupFailed        = "Failed to set up the request."
	MsgUnexpectedResponse = "Received an unexpected response from the server."
	MsgSessionExpired     = "Your session has expired. Please log in again."
)

// DefaultAllowList holds the endpoints whose failures are never announced by
// the generic notification: callers of these endpoints show their own errors,
// or the endpoints are hit out of band.
var DefaultAllowList = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/logout",
	"/api/v1/payments/callback",
	"/api/v1/payments/ipn",
}

// Notification is a transient user-visible message.
type Notification struct {
	Message string
	Status  int  // HTTP status when the server answered, otherwise 0
	Session bool // true for the one-time session-expired notice
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Redirector sends the user to the login entry point after a terminal
// authorization failure.
type Redirector interface {
	RedirectToLogin(reason string)
}

// RedirectorFunc adapts a function to Redirector.
type RedirectorFunc func(reason string)

func (f RedirectorFunc) RedirectToLogin(reason string) { f(reason) }

type logNotifier struct{}

func (logNotifier) Notify(n Notification) {
	log.Warn().Int("status", n.Status).Bool("session", n.Session).Msg(n.Message)
}

type logRedirector struct{}

func (logRedirector) RedirectToLogin(reason string) {
	log.Warn().Str("reason", reason).Msg("Login required")
}

// Decide is the pure notification policy for a failed call to path. It
// returns false when nothing should be shown: for allow-listed endpoints, for
// 401s (the refresh flow owns those) and for terminal session failures, which
// produce their own notice.
func Decide(err error, path string, allowList []string) (Notification, bool) {
	if err == nil {
		return Notification{}, false
	}
	if errors.Is(err, ErrSessionExpired) {
		return Notification{}, false
	}
	if Suppressed(path, allowList) {
		return Notification{}, false
	}

	var e *Error
	if !errors.As(err, &e) {
		return Notification{Message: MsgSetupFailed}, true
	}
	switch e.Kind {
	case KindStatus:
		if e.Status == http.StatusUnauthorized {
			return Notification{}, false
		}
		msg := e.Message
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d.", e.Status)
		}
		return Notification{Message: msg, Status: e.Status}, true
	case KindTransport:
		return Notification{Message: MsgNoResponse}, true
	case KindDecode:
		return Notification{Message: MsgUnexpectedResponse, Status: e.Status}, true
	default:
		return Notification{Message: MsgSetupFailed}, true
	}
}

// Suppressed reports whether path matches an allow-list entry.
func Suppressed(path string, allowList []string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, entry := range allowList {
		if entry != "" && strings.Contains(path, entry) {
			return true
		}
	}
	return false
}
