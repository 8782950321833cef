package auth

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the core to collaborators.
const (
	ErrInvalidField        = "INVALID_FIELD"
	ErrUserAlreadyExists   = "USER_ALREADY_EXISTS"
	ErrUserNotFound        = "USER_NOT_FOUND"
	ErrAuthFailed          = "AUTH_FAILED"
	ErrSelfDeleteForbidden = "SELF_DELETE_FORBIDDEN"
	ErrStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrInternal            = "INTERNAL_ERROR"
)

// AuthError carries a stable code alongside a human-readable message.
// Collaborators translate codes into user-visible strings; the message is
// diagnostic only.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func NewAuthError(code, message string) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
	}
}

func NewAuthErrorWithCause(code, message string, cause error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// IsAuthError reports whether err carries the given code.
func IsAuthError(err error, code string) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code == code
	}
	return false
}
