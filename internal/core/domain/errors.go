package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrNoUser             = errors.New("no current user")
)

// APIError is a non-2xx answer (or transport failure, Status 0) from the school API.
type APIError struct {
	Status int
	Data   json.RawMessage
	Err    error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("school api: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("school api: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("school api: status %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether the server rejected the credential itself.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsUnauthorized reports whether err carries a 401/403 from the school API.
// Transport failures and other statuses are not definitive.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// LoginError is the failure half of a login attempt, carrying what the UI
// needs to render an inline message.
type LoginError struct {
	Status int
	Data   json.RawMessage
	Err    error
}

func (e *LoginError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("login failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("login failed: %v", e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

// NewLoginError wraps err, lifting status and payload out of an APIError.
func NewLoginError(err error) *LoginError {
	le := &LoginError{Err: err}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		le.Status = apiErr.Status
		le.Data = apiErr.Data
	}
	return le
}
