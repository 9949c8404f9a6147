package core

import (
	"errors"
	"fmt"

	"lifelessons-backend-go/internal/db"
)

// Error kinds. Any error that does not match one of these is a server error.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Error is a classified failure carrying a message that is safe to return to clients.
// errors.Is matches both its Kind and its Cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NotFoundError builds a NotFound error with message.
func NotFoundError(message string) error { return newError(ErrNotFound, message) }

// ForbiddenError builds a Forbidden error with message.
func ForbiddenError(message string) error { return newError(ErrForbidden, message) }

// InvalidInputError builds an InvalidInput error with message.
func InvalidInputError(message string) error { return newError(ErrInvalidInput, message) }

// UnauthenticatedError builds an Unauthenticated error with message.
func UnauthenticatedError(message string) error { return newError(ErrUnauthenticated, message) }

// storeErr turns a repository error into a NotFound error when the document is
// missing and otherwise wraps it with context as a server error.
func storeErr(err error, notFoundMessage, action string) error {
	if errors.Is(err, db.ErrNotFound) {
		return &Error{Kind: ErrNotFound, Message: notFoundMessage, Cause: err}
	}
	return fmt.Errorf("%s: %w", action, err)
}

// PublicMessage returns the client-facing message of err and whether err is classified.
func PublicMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
