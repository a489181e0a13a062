package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/service"
)

// SessionService is the part of the coordinator the UI shell drives.
type SessionService interface {
	Snapshot() service.Session
	Login(ctx context.Context, in service.LoginInput) (*domain.User, error)
	Logout(ctx context.Context, opts service.LogoutOptions) error
	UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	SetCampusID(ctx context.Context, campusID string) error
}

// RedirectSource exposes the latest navigation the coordinator asked for.
type RedirectSource interface {
	LastPath() string
}

// SessionHandler serves the session surface consumed by the UI shell.
type SessionHandler struct {
	session   SessionService
	redirects RedirectSource
	log       zerolog.Logger
}

func NewSessionHandler(session SessionService, redirects RedirectSource, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{session: session, redirects: redirects, log: log}
}

// Get returns the current session snapshot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.snapshot())
}

// Login signs in against the school API.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  loginErrorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  loginErrorResponse
// @Router       /v1/session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.session.Login(c.Request().Context(), service.LoginInput{
		Identifier: req.Identifier,
		Secret:     req.Password,
		Remember:   req.Remember,
		OwnerKey:   req.OwnerKey,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:     user,
		Redirect: domain.DashboardPath(user.Role),
	})
}

// Logout ends the session.
//
// @Summary      Sign out
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  false  "Options"
// @Success      200   {object}  sessionResponse
// @Router       /v1/session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}

	if err := h.session.Logout(c.Request().Context(), service.LogoutOptions{SkipRemote: req.SkipRemote}); err != nil {
		h.log.Warn().Err(err).Msg("logout left stored session behind")
	}
	return c.JSON(http.StatusOK, h.snapshot())
}

// UpdateUser shallow-merges profile fields into the signed-in user.
//
// @Summary      Update the signed-in user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.UserPatch  true  "Partial user"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/session/user [patch]
func (h *SessionHandler) UpdateUser(c echo.Context) error {
	var patch domain.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.session.UpdateUser(c.Request().Context(), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetCampus selects the campus scope; an empty id falls back to the user's campus.
//
// @Summary      Select campus
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      campusRequest  true  "Campus"
// @Success      200   {object}  campusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/session/campus [put]
func (h *SessionHandler) SetCampus(c echo.Context) error {
	var req campusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.session.SetCampusID(c.Request().Context(), req.CampusID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, campusResponse{CampusID: h.session.Snapshot().CampusID})
}

// Module confirms the signed-in role may open a module (and optional subroute).
// Access is enforced by the RequireModule middleware in front of it.
//
// @Summary      Check module access
// @Tags         session
// @Produce      json
// @Param        module    path      string  true   "Module"
// @Param        subroute  query     string  false  "Subroute"
// @Success      200       {object}  moduleAccessResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /v1/session/modules/{module} [get]
func (h *SessionHandler) Module(c echo.Context) error {
	return c.JSON(http.StatusOK, moduleAccessResponse{
		Module:   c.Param("module"),
		Subroute: c.QueryParam("subroute"),
		Allowed:  true,
	})
}

func (h *SessionHandler) snapshot() sessionResponse {
	s := h.session.Snapshot()
	resp := sessionResponse{
		Authenticated: s.Authenticated,
		Loading:       s.Loading,
		User:          s.User,
		ModuleAccess:  s.ModuleAccess,
		CampusID:      s.CampusID,
	}
	if h.redirects != nil {
		resp.Redirect = h.redirects.LastPath()
	}
	return resp
}
