package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/service"
)

func moduleContext(e *echo.Echo, module, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("module")
	c.SetParamValues(module)
	return c, rec
}

func withAccess(access *domain.ModuleAccess) stubSession {
	return stubSession{session: service.Session{
		Authenticated: true,
		User:          &domain.User{Role: domain.RoleTeacher},
		ModuleAccess:  access,
	}}
}

func TestRequireModule_Allows(t *testing.T) {
	e := echo.New()
	c, rec := moduleContext(e, "attendance", "/?subroute=attendance/mark")

	access := &domain.ModuleAccess{
		AllowModules:   []string{"attendance"},
		AllowSubroutes: []string{"attendance/mark"},
	}
	called := false
	handler := RequireModule(withAccess(access), "module")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireModule_Wildcard(t *testing.T) {
	e := echo.New()
	c, rec := moduleContext(e, "finance", "/?subroute=finance/payroll")

	access := domain.AllowAll()
	handler := RequireModule(withAccess(&access), "module")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireModule_Forbidden(t *testing.T) {
	cases := []struct {
		name   string
		module string
		target string
		access *domain.ModuleAccess
	}{
		{"module not granted", "fees", "/", &domain.ModuleAccess{AllowModules: []string{"classes"}}},
		{"subroute not granted", "classes", "/?subroute=classes/delete", &domain.ModuleAccess{AllowModules: []string{"classes"}}},
		{"grant not resolved", "classes", "/", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c, rec := moduleContext(e, tc.module, tc.target)

			handler := RequireModule(withAccess(tc.access), "module")(func(c echo.Context) error {
				t.Fatalf("next handler should not be called")
				return nil
			})

			if err := handler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}
