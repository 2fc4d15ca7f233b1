package observe

import (
	"context"

	"github.com/jonwraymond/circuitkit/breaker"
)

// StateHook turns breaker state transitions into telemetry. It implements
// breaker.StateObserver: register it with Config.Observers or
// Breaker.Subscribe.
//
// Severity follows the direction of the transition: opening the circuit is
// an error, probing is a warning, recovery is informational.
type StateHook struct {
	metrics Metrics
	logger  Logger
	meta    Meta
}

// NewStateHook creates a StateHook bound to one breaker's metadata.
func NewStateHook(obs Observer, meta Meta) (*StateHook, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	if meta.Breaker == "" {
		return nil, ErrMissingBreakerName
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &StateHook{
		metrics: metrics,
		logger:  obs.Logger().WithBreaker(meta),
		meta:    meta,
	}, nil
}

// OnTransition records the transition metric and logs the event.
func (h *StateHook) OnTransition(e breaker.Event) {
	ctx := context.Background()

	h.metrics.RecordTransition(ctx, h.meta, e.From.String(), e.To.String())

	fields := []Field{
		{Key: "from", Value: e.From.String()},
		{Key: "to", Value: e.To.String()},
		{Key: "throughput", Value: e.Snapshot.Total},
		{Key: "failure_ratio", Value: e.Snapshot.FailureRatio()},
	}
	if e.Outcome != nil {
		fields = append(fields, Field{Key: "outcome", Value: e.Outcome.Error()})
	}

	switch e.Kind {
	case breaker.KindOpened:
		h.logger.Error(ctx, "circuit opened", fields...)
	case breaker.KindHalfOpened:
		h.logger.Warn(ctx, "circuit half-opened", fields...)
	case breaker.KindClosed:
		h.logger.Info(ctx, "circuit closed", fields...)
	}
}

var _ breaker.StateObserver = (*StateHook)(nil)
