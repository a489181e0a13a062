package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/portal-agent/internal/core/service"
)

// Context keys set by RequireSession.
const (
	ContextUser = "user"
	ContextRole = "role"
)

// SessionSource yields the current session.
type SessionSource interface {
	Snapshot() service.Session
}

// RequireSession rejects requests while no user is signed in and injects the
// user and role into context. A session still loading is answered with 503 so
// the UI shell keeps its loading state instead of bouncing to sign-in.
func RequireSession(src SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := src.Snapshot()
			if !s.Authenticated || s.User == nil {
				if s.Loading {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session is loading")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}

			c.Set(ContextUser, s.User)
			c.Set(ContextRole, s.User.Role)
			return next(c)
		}
	}
}
