package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/service"
)

type stubSessionService struct {
	snapshotFn    func() service.Session
	loginFn       func(ctx context.Context, in service.LoginInput) (*domain.User, error)
	logoutFn      func(ctx context.Context, opts service.LogoutOptions) error
	updateUserFn  func(ctx context.Context, patch domain.UserPatch) (*domain.User, error)
	setCampusIDFn func(ctx context.Context, campusID string) error
}

func (s *stubSessionService) Snapshot() service.Session {
	if s.snapshotFn == nil {
		return service.Session{}
	}
	return s.snapshotFn()
}

func (s *stubSessionService) Login(ctx context.Context, in service.LoginInput) (*domain.User, error) {
	return s.loginFn(ctx, in)
}

func (s *stubSessionService) Logout(ctx context.Context, opts service.LogoutOptions) error {
	return s.logoutFn(ctx, opts)
}

func (s *stubSessionService) UpdateUser(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	return s.updateUserFn(ctx, patch)
}

func (s *stubSessionService) SetCampusID(ctx context.Context, campusID string) error {
	return s.setCampusIDFn(ctx, campusID)
}

type stubRedirects struct{ path string }

func (s stubRedirects) LastPath() string { return s.path }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestSessionHandler_Get(t *testing.T) {
	e := newEcho()
	stub := &stubSessionService{
		snapshotFn: func() service.Session {
			access := domain.AllowAll()
			return service.Session{
				Authenticated: true,
				User:          &domain.User{ID: "O1", Role: domain.RoleOwner},
				ModuleAccess:  &access,
				CampusID:      "c-9",
			}
		},
	}
	h := NewSessionHandler(stub, stubRedirects{path: "/owner/dashboard"}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/session", nil), rec)

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true || resp["campus_id"] != "c-9" || resp["redirect"] != "/owner/dashboard" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	access, _ := resp["module_access"].(map[string]any)
	if access["allowModules"] != domain.Wildcard {
		t.Fatalf("expected wildcard grant, got %+v", resp["module_access"])
	}
}

func TestSessionHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, in service.LoginInput) (*domain.User, error) {
			if in.Identifier != "admin@x.com" || in.Secret != "pw" || !in.Remember {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "A1", Role: domain.RoleAdmin}, nil
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/v1/session/login", `{"identifier":"admin@x.com","password":"pw","remember":true}`)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Redirect != "/admin/dashboard" || resp.User == nil || resp.User.ID != "A1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSessionHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessionService{
		loginFn: func(ctx context.Context, in service.LoginInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/v1/session/login", `{"identifier":"admin@x.com"}`)
	rec := httptest.NewRecorder()

	err := h.Login(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if !strings.Contains(he.Message.(string), "password is required") {
		t.Errorf("expected json field name in message, got %v", he.Message)
	}
}

func TestSessionHandler_Login_Rejected(t *testing.T) {
	e := newEcho()
	want := &domain.LoginError{Status: http.StatusUnauthorized, Err: domain.ErrInvalidCredentials}
	h := NewSessionHandler(&stubSessionService{
		loginFn: func(ctx context.Context, in service.LoginInput) (*domain.User, error) {
			return nil, want
		},
	}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/v1/session/login", `{"identifier":"teacher1","password":"nope"}`)
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); !errors.Is(err, want) {
		t.Fatalf("expected login error to propagate, got %v", err)
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	e := newEcho()
	var got service.LogoutOptions
	h := NewSessionHandler(&stubSessionService{
		logoutFn: func(ctx context.Context, opts service.LogoutOptions) error {
			got = opts
			return nil
		},
	}, stubRedirects{path: domain.SignInPath}, zerolog.Nop())

	req := jsonRequest(http.MethodPost, "/v1/session/logout", `{"skip_remote":true}`)
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !got.SkipRemote {
		t.Errorf("expected skip_remote to be forwarded")
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Authenticated || resp.Redirect != domain.SignInPath {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestSessionHandler_UpdateUser(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessionService{
		updateUserFn: func(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
			if patch.Name == nil || *patch.Name != "Ada" || patch.Email != nil {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			return &domain.User{ID: "T1", Role: domain.RoleTeacher, Name: "Ada"}, nil
		},
	}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPatch, "/v1/session/user", `{"name":"Ada"}`)
	rec := httptest.NewRecorder()

	if err := h.UpdateUser(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_UpdateUser_NoUser(t *testing.T) {
	e := newEcho()
	h := NewSessionHandler(&stubSessionService{
		updateUserFn: func(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
			return nil, domain.ErrNoUser
		},
	}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPatch, "/v1/session/user", `{"name":"Ada"}`)
	rec := httptest.NewRecorder()

	if err := h.UpdateUser(e.NewContext(req, rec)); !errors.Is(err, domain.ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestSessionHandler_SetCampus(t *testing.T) {
	e := newEcho()
	var stored string
	h := NewSessionHandler(&stubSessionService{
		setCampusIDFn: func(ctx context.Context, campusID string) error {
			stored = campusID
			return nil
		},
		snapshotFn: func() service.Session {
			return service.Session{CampusID: stored}
		},
	}, nil, zerolog.Nop())

	req := jsonRequest(http.MethodPut, "/v1/session/campus", `{"campus_id":"north"}`)
	rec := httptest.NewRecorder()

	if err := h.SetCampus(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp campusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.CampusID != "north" {
		t.Errorf("expected north, got %q", resp.CampusID)
	}
}

func TestSessionHandler_LogoutCleanupFailureIsLogged(t *testing.T) {
	e := newEcho()
	var buf bytes.Buffer
	h := NewSessionHandler(&stubSessionService{
		logoutFn: func(ctx context.Context, opts service.LogoutOptions) error {
			return errors.New("redis: connection refused")
		},
	}, stubRedirects{path: domain.SignInPath}, zerolog.New(&buf))

	req := jsonRequest(http.MethodPost, "/v1/session/logout", `{}`)
	rec := httptest.NewRecorder()

	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one zerolog entry, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["error"] != "redis: connection refused" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}
