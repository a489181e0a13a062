package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubReadiness struct {
	ch chan struct{}
}

func (s stubReadiness) Ready() <-chan struct{} { return s.ch }

func readyChan(closed bool) stubReadiness {
	ch := make(chan struct{})
	if closed {
		close(ch)
	}
	return stubReadiness{ch: ch}
}

func runReadiness(t *testing.T, h *HealthDependenciesHandler) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Pinger{"redis": stubPinger{}}, readyChan(true))

	rec, body := runReadiness(t, h)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body.Dependencies["redis"].Status != "ok" || body.Dependencies["session"].Status != "ok" {
		t.Errorf("unexpected dependencies: %+v", body.Dependencies)
	}
}

func TestReadiness_BackendDown(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Pinger{"mongodb": stubPinger{err: errors.New("refused")}}, readyChan(true))

	rec, body := runReadiness(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if got := body.Dependencies["mongodb"]; got.Status != "unhealthy" || got.Error != "refused" {
		t.Errorf("unexpected mongodb status: %+v", got)
	}
}

func TestReadiness_SessionStillLoading(t *testing.T) {
	h := NewHealthDependenciesHandler(nil, readyChan(false))

	rec, body := runReadiness(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if body.Status != "degraded" || body.Dependencies["session"].Status != "loading" {
		t.Errorf("unexpected body: %+v", body)
	}
}
