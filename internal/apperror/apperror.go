// Package apperror defines the application's error taxonomy.
//
// Services return errors built from the sentinels below; the HTTP layer maps
// them to status codes with errors.Is, so no layer in between needs to know
// about HTTP. Every failure is reported to the caller as a distinct result —
// nothing is logged-and-swallowed.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// AppError carries a sentinel plus a human-readable message.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that an entity is absent. It is also used when an entity
// exists but is deliberately hidden from the caller, so that restricted
// content cannot be probed for existence.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports invalid input on a specific field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail reports a registration attempt with an email that already
// has an account. HTTP handlers map this to 409 Conflict.
func DuplicateEmail(email string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("an account with email %s already exists", email),
	}
}

// InvalidCredentials reports a failed login. The message deliberately does
// not reveal whether the email or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "invalid email or password",
	}
}

// Unauthenticated reports an operation that requires a logged-in caller.
// HTTP handlers map this to 401 Unauthorized.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Forbidden reports that the caller is authenticated but lacks the role or
// ownership the operation requires. HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
