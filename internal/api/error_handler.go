package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// loginErrorResponse extends the envelope with what the school API said.
type loginErrorResponse struct {
	Error  string          `json:"error"`
	Status int             `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Renders login failures with the school API's status and payload.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var le *domain.LoginError
		if errors.As(err, &le) {
			code, body := resolveLoginError(le)
			_ = c.JSON(code, body)
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

// resolveLoginError keeps 4xx answers from the school API as they are and
// reports upstream failures as 502.
func resolveLoginError(le *domain.LoginError) (int, loginErrorResponse) {
	msg := "login failed"
	if le.Err != nil {
		msg = le.Err.Error()
	}
	body := loginErrorResponse{Error: msg, Status: le.Status, Data: le.Data}
	switch {
	case errors.Is(le, domain.ErrValidation):
		return http.StatusUnprocessableEntity, body
	case le.Status >= 400 && le.Status < 500:
		return le.Status, body
	default:
		return http.StatusBadGateway, body
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrNoUser), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not signed in"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
