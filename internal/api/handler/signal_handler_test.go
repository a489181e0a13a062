package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/portal-agent/internal/core/ports"
)

type stubDispatcher struct {
	enqueueFn      func(ctx context.Context, sig ports.Signal) error
	enqueueBatchFn func(ctx context.Context, sigs []ports.Signal) error
}

func (s *stubDispatcher) Enqueue(ctx context.Context, sig ports.Signal) error {
	return s.enqueueFn(ctx, sig)
}

func (s *stubDispatcher) EnqueueBatch(ctx context.Context, sigs []ports.Signal) error {
	return s.enqueueBatchFn(ctx, sigs)
}

func TestSignalHandler_Receive(t *testing.T) {
	e := newEcho()
	var got ports.Signal
	h := NewSignalHandler(&stubDispatcher{
		enqueueFn: func(ctx context.Context, sig ports.Signal) error {
			got = sig
			return nil
		},
	})

	req := jsonRequest(http.MethodPost, "/v1/session/signals", `{"kind":"visibility","visible":true}`)
	rec := httptest.NewRecorder()

	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if got.Kind != ports.SignalVisibility || !got.Visible {
		t.Errorf("unexpected signal: %+v", got)
	}
}

func TestSignalHandler_Receive_UnauthorizedNeedsURL(t *testing.T) {
	e := newEcho()
	h := NewSignalHandler(&stubDispatcher{
		enqueueFn: func(ctx context.Context, sig ports.Signal) error {
			t.Fatalf("dispatcher must not be called")
			return nil
		},
	})

	req := jsonRequest(http.MethodPost, "/v1/session/signals", `{"kind":"unauthorized"}`)
	rec := httptest.NewRecorder()

	err := h.Receive(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestSignalHandler_ReceiveBatch_PreservesOrder(t *testing.T) {
	e := newEcho()
	var got []ports.Signal
	h := NewSignalHandler(&stubDispatcher{
		enqueueBatchFn: func(ctx context.Context, sigs []ports.Signal) error {
			got = sigs
			return nil
		},
	})

	body := `[{"kind":"unauthorized","url":"/students"},{"kind":"focus"}]`
	req := jsonRequest(http.MethodPost, "/v1/session/signals/batch", body)
	rec := httptest.NewRecorder()

	if err := h.ReceiveBatch(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(got) != 2 || got[0].URL != "/students" || got[1].Kind != ports.SignalFocus {
		t.Errorf("unexpected signals: %+v", got)
	}
}

func TestSignalHandler_ReceiveBatch_Empty(t *testing.T) {
	e := newEcho()
	h := NewSignalHandler(&stubDispatcher{})

	req := jsonRequest(http.MethodPost, "/v1/session/signals/batch", `[]`)
	rec := httptest.NewRecorder()

	err := h.ReceiveBatch(e.NewContext(req, rec))

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
