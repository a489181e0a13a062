package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireModule enforces the module-access grant of the signed-in role. The
// module comes from the path parameter param; an optional "subroute" query
// parameter is checked against the subroute allow-list.
func RequireModule(src SessionSource, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := src.Snapshot().ModuleAccess
			if access == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "module access not resolved"})
			}
			if !access.AllowsModule(c.Param(param)) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			if sub := c.QueryParam("subroute"); sub != "" && !access.AllowsSubroute(sub) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
