package clierr

import (
	"context"
	"errors"
	"net/http"

	"github.com/habedi/solekit/client"
)

// Type categorizes a CLI-facing error for consistent messaging and exit codes.
type Type string

const (
	Validation Type = "validation"
	NotFound   Type = "not_found"
	Auth       Type = "auth"
	Network    Type = "network"
	Internal   Type = "internal"
)

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode maps the error type to the process exit status.
func (e *Error) ExitCode() int {
	switch e.Type {
	case Validation:
		return 2
	case Auth:
		return 3
	case NotFound:
		return 4
	case Network:
		return 5
	default:
		return 1
	}
}

// FromAPI classifies an error returned by the API layer. msg prefixes the
// server message when there is one.
func FromAPI(msg string, err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, client.ErrSessionExpired) {
		return New(Auth, "your session has expired; run 'solekit login'", err)
	}
	if errors.Is(err, context.Canceled) {
		return New(Internal, msg+": cancelled", err)
	}

	var ae *client.Error
	if !errors.As(err, &ae) {
		return New(Internal, msg+": "+err.Error(), err)
	}
	text := msg
	if ae.Message != "" {
		text = msg + ": " + ae.Message
	}
	switch ae.Kind {
	case client.KindTransport:
		return New(Network, msg+": cannot reach the server", err)
	case client.KindStatus:
		switch ae.Status {
		case http.StatusNotFound:
			return New(NotFound, text, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return New(Auth, text, err)
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return New(Validation, text, err)
		}
		if ae.Message == "" {
			text = msg + ": " + http.StatusText(ae.Status)
		}
		return New(Internal, text, err)
	default:
		return New(Internal, msg+": "+err.Error(), err)
	}
}
