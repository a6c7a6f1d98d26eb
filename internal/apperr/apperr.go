// Package apperr defines the closed set of error kinds the application can
// surface to a user. Every failure a handler renders maps to exactly one
// kind, and every kind maps to exactly one HTTP status code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a user-visible failure.
type Kind int

const (
	// Internal is the catch-all for unclassified errors.
	Internal Kind = iota
	// Validation covers missing or malformed form fields.
	Validation
	// NotFound covers lookups with no result, such as an unknown symbol.
	NotFound
	// Auth covers failed credential checks.
	Auth
	// InsufficientFunds means a buy costs more than the user's cash.
	InsufficientFunds
	// InsufficientShares means a sell exceeds the user's holding.
	InsufficientShares
	// Unavailable means an external dependency could not be reached.
	Unavailable
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case Validation, InsufficientFunds, InsufficientShares:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Auth:
		return http.StatusForbidden
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error under a kind and message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message for err. Unclassified errors get
// a generic message so internal details never reach the apology page.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
