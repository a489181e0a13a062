package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusdesk/portal-agent/internal/core/ports"
)

// SignalDispatcher is the interface the handler uses to enqueue UI signals.
type SignalDispatcher interface {
	Enqueue(ctx context.Context, sig ports.Signal) error
	EnqueueBatch(ctx context.Context, sigs []ports.Signal) error
}

// SignalHandler handles UI lifecycle signal ingestion.
type SignalHandler struct {
	dispatcher SignalDispatcher
}

// NewSignalHandler creates a SignalHandler backed by the given dispatcher.
func NewSignalHandler(dispatcher SignalDispatcher) *SignalHandler {
	return &SignalHandler{dispatcher: dispatcher}
}

// Receive handles POST /v1/session/signals. It enqueues one signal and returns 202.
//
// @Summary      Ingest a UI signal
// @Tags         signals
// @Accept       json
// @Produce      json
// @Param        body  body      signalRequest  true  "Signal"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/session/signals [post]
func (h *SignalHandler) Receive(c echo.Context) error {
	var req signalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.dispatcher.Enqueue(c.Request().Context(), toSignal(req)); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "signal accepted"})
}

// ReceiveBatch handles POST /v1/session/signals/batch. Signals are enqueued in order.
//
// @Summary      Ingest a batch of UI signals
// @Tags         signals
// @Accept       json
// @Produce      json
// @Param        body  body      []signalRequest  true  "Signals, oldest first"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/session/signals/batch [post]
func (h *SignalHandler) ReceiveBatch(c echo.Context) error {
	var reqs []signalRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	sigs := make([]ports.Signal, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("signal[%d]: %s", i, err.Error()))
		}
		sigs = append(sigs, toSignal(req))
	}

	if err := h.dispatcher.EnqueueBatch(c.Request().Context(), sigs); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "signals accepted",
		Count:   len(sigs),
	})
}

func toSignal(r signalRequest) ports.Signal {
	return ports.Signal{
		Kind:    ports.SignalKind(r.Kind),
		Visible: r.Visible,
		URL:     r.URL,
	}
}
