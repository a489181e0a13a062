package queue

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusdesk/portal-agent/internal/core/domain"
	"github.com/campusdesk/portal-agent/internal/core/ports"
	"github.com/campusdesk/portal-agent/pkg/metrics"
)

const channelBuffer = 256

// SignalHandler applies signals to the session.
type SignalHandler interface {
	HandleFocus(ctx context.Context)
	HandleVisibility(ctx context.Context, visible bool)
	OnUnauthorized(ev domain.UnauthorizedEvent)
}

// Dispatcher feeds UI signals to a single worker so they are applied in
// arrival order and never concurrently with each other.
type Dispatcher struct {
	ch      chan ports.Signal
	handler SignalHandler
	log     zerolog.Logger
}

func NewDispatcher(handler SignalHandler, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		ch:      make(chan ports.Signal, channelBuffer),
		handler: handler,
		log:     log,
	}
}

// Start launches the worker goroutine. It stops when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.run(ctx)
}

// Enqueue queues a signal. It blocks once channelBuffer signals are pending
// and gives up when ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, sig ports.Signal) error {
	switch sig.Kind {
	case ports.SignalFocus, ports.SignalVisibility, ports.SignalUnauthorized:
	default:
		return fmt.Errorf("%w: unknown signal kind %q", domain.ErrValidation, sig.Kind)
	}
	select {
	case d.ch <- sig:
		metrics.SignalsQueued.Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnqueueBatch queues signals in order, stopping at the first failure.
func (d *Dispatcher) EnqueueBatch(ctx context.Context, sigs []ports.Signal) error {
	for i, s := range sigs {
		if err := d.Enqueue(ctx, s); err != nil {
			return fmt.Errorf("signal %d: %w", i, err)
		}
	}
	return nil
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-d.ch:
			metrics.SignalsQueued.Dec()
			d.apply(ctx, sig)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, sig ports.Signal) {
	d.log.Debug().Str("kind", string(sig.Kind)).Msg("applying ui signal")
	switch sig.Kind {
	case ports.SignalFocus:
		d.handler.HandleFocus(ctx)
	case ports.SignalVisibility:
		d.handler.HandleVisibility(ctx, sig.Visible)
	case ports.SignalUnauthorized:
		d.handler.OnUnauthorized(domain.UnauthorizedEvent{URL: sig.URL})
	}
}
