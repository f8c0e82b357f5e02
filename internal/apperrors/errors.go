// Package apperrors defines the error taxonomy shared by the repositories,
// the services and the CLI.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how callers should react to it
type Kind string

const (
	// KindValidation is malformed local input, rejected before any mutation or call
	KindValidation Kind = "validation"
	// KindNotFound is a reference to a missing task, milestone or coursework
	KindNotFound Kind = "not_found"
	// KindTransient is a connectivity or server failure; the operation can be retried
	KindTransient Kind = "transient"
	// KindAuth is a missing, expired or rejected token
	KindAuth Kind = "auth"
)

// Error carries a human-readable message and an HTTP-like status code
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrTransient  = &Error{Kind: KindTransient}
	ErrAuth       = &Error{Kind: KindAuth}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation creates a validation error
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

// NotFound creates a not-found error
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...), StatusCode: http.StatusNotFound}
}

// Transient creates a retryable error. status is 0 when no response was received.
func Transient(status int, message string, cause error) *Error {
	return &Error{Kind: KindTransient, Message: message, StatusCode: status, Cause: cause}
}

// Auth creates an authorization error
func Auth(status int, message string) *Error {
	return &Error{Kind: KindAuth, Message: message, StatusCode: status}
}

// FromStatus maps a non-2xx HTTP status to an error of the matching kind
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	var kind Kind
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound, http.StatusGone:
		kind = KindNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		kind = KindValidation
	default:
		kind = KindTransient
	}
	return &Error{Kind: kind, Message: message, StatusCode: status}
}

// IsRetryable reports whether err is worth retrying
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// StatusCode returns the status code carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// Message returns the human-readable message of err without status or cause
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
