// Package domain holds the error kinds and repository contract shared by all entities.
package domain

import "errors"

var (
	// ErrNotFound indicates that no row matches the requested identity.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness constraint breach.
	ErrConflict = errors.New("already exists")
	// ErrForbidden covers missing, expired or unknown tokens and non-owner access.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a credential mismatch on login.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation indicates input that fails a domain constraint, such as an overlong password.
	ErrValidation = errors.New("validation failed")
)

// Error is an entity-level error that reads as its own message and
// matches its kind under errors.Is.
type Error struct {
	kind error
	msg  string
}

// NewError returns an error of the given kind carrying msg.
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind.
func (e *Error) Unwrap() error { return e.kind }

// Kind returns the sentinel this error belongs to.
func (e *Error) Kind() error { return e.kind }
