package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a request failed.
type Kind int

const (
	// KindSetup means the request could not be built or encoded; nothing was sent.
	KindSetup Kind = iota
	// KindTransport means no response was received (network error, timeout, cancellation).
	KindTransport
	// KindStatus means the server answered with a non-2xx status or a success:false envelope.
	KindStatus
	// KindDecode means a 2xx response body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrSessionExpired is wrapped by every terminal authorization failure. When it
// is returned the stored credentials have already been cleared.
var ErrSessionExpired = errors.New("session expired")

// Error is returned by both clients for every failed call.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int    // zero unless Kind == KindStatus
	Message string // server-provided message, if any
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Message != "" {
			return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
		}
		return fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	case KindTransport:
		return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
	case KindDecode:
		return fmt.Sprintf("%s %s: invalid response body: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s %s: request setup failed: %v", e.Method, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindStatus {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// sessionExpiredError is the terminal failure of the refresh protocol. It
// matches ErrSessionExpired and still exposes the original *Error.
type sessionExpiredError struct {
	reason string
	cause  error
}

func (e *sessionExpiredError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", ErrSessionExpired, e.reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrSessionExpired, e.reason, e.cause)
}

func (e *sessionExpiredError) Unwrap() []error { return []error{ErrSessionExpired, e.cause} }
