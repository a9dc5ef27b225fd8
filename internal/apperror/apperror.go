package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundOrForbidden covers ownership-checked mutations. "Doesn't exist"
// and "exists but isn't yours" collapse into one signal so the response
// never leaks whether the resource exists.
func NotFoundOrForbidden(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// EmailInUse is returned by registration when the email already has an
// account.
func EmailInUse() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "email already in use",
		Field:   "email",
	}
}

// InvalidCredentials is deliberately generic: the same error for an unknown
// email, an account without a password, and a wrong password. Distinguishing
// them would let callers probe which emails are registered.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

// Unauthenticated returns an AppError for requests that need a valid
// session and don't have one. HTTP handlers map this to 401.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "authentication required",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// CurrentPasswordRequired is returned by password change when the account
// already has a password but the caller didn't supply it.
func CurrentPasswordRequired() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "current password is required",
		Field:   "currentPassword",
	}
}

// CurrentPasswordIncorrect is returned by password change when the supplied
// current password doesn't match the stored hash.
func CurrentPasswordIncorrect() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "current password is incorrect",
		Field:   "currentPassword",
	}
}
