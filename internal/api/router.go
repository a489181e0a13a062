package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/campusdesk/portal-agent/docs"
	"github.com/campusdesk/portal-agent/internal/api/handler"
	"github.com/campusdesk/portal-agent/internal/api/middleware"
	"github.com/campusdesk/portal-agent/internal/infrastructure/http/handlers"
)

// SessionCoordinator is everything the HTTP surface needs from the session.
type SessionCoordinator interface {
	handler.SessionService
	Ready() <-chan struct{}
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Session    SessionCoordinator
	Redirects  handler.RedirectSource
	Signals    handler.SignalDispatcher
	Storage    map[string]handlers.Pinger
	Log        zerolog.Logger
	EnableDocs bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal_agent"))

	// --- Health probes and metrics (no session required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Storage, d.Session)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	if d.EnableDocs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(d.Session, d.Redirects, d.Log)
	signalHandler := handler.NewSignalHandler(d.Signals)
	requireSession := middleware.RequireSession(d.Session)

	v1 := e.Group("/v1/session")
	v1.GET("", sessionHandler.Get)
	v1.POST("/login", sessionHandler.Login)
	v1.POST("/logout", sessionHandler.Logout)
	v1.PATCH("/user", sessionHandler.UpdateUser, requireSession)
	v1.PUT("/campus", sessionHandler.SetCampus, requireSession)
	v1.GET("/modules/:module", sessionHandler.Module,
		requireSession, middleware.RequireModule(d.Session, "module"))
	v1.POST("/signals", signalHandler.Receive)
	v1.POST("/signals/batch", signalHandler.ReceiveBatch)

	return e
}
