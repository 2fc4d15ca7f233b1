package observe

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// Instrument wraps a breaker's Execute with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Execute is safe for concurrent use.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the breaker are recorded and propagated unchanged.
type Instrument struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	meta    Meta
	cb      *breaker.Breaker
}

// NewInstrument creates an Instrument from an Observer and a breaker.
func NewInstrument(obs Observer, meta Meta, cb *breaker.Breaker) (*Instrument, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	if cb == nil {
		return nil, ErrNilBreaker
	}
	if meta.Breaker == "" {
		meta.Breaker = cb.Name()
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &Instrument{
		tracer:  newTracer(obs.Tracer()),
		metrics: metrics,
		logger:  obs.Logger().WithBreaker(meta),
		meta:    meta,
		cb:      cb,
	}, nil
}

// Execute runs op through the breaker, recording a span, metrics, and a log
// line for the attempt. Rejections are counted separately from admitted
// executions so dashboards can tell fast-fails apart from backend errors.
func (i *Instrument) Execute(ctx context.Context, op breaker.Operation) error {
	ctx, span := i.tracer.StartSpan(ctx, i.meta)
	start := time.Now()

	err := i.cb.Execute(ctx, op)

	duration := time.Since(start)
	i.tracer.EndSpan(span, err)

	if reason, rejected := rejectionReason(err); rejected {
		i.metrics.RecordRejection(ctx, i.meta, reason)
		i.logger.Warn(ctx, "execution rejected",
			Field{Key: "state", Value: reason},
			Field{Key: "error", Value: err.Error()},
		)
		return err
	}

	i.metrics.RecordExecution(ctx, i.meta, duration, err)

	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		i.logger.Error(ctx, "execution failed", fields...)
	} else {
		i.logger.Info(ctx, "execution completed", fields...)
	}

	return err
}

// Breaker returns the wrapped breaker.
func (i *Instrument) Breaker() *breaker.Breaker {
	return i.cb
}

// rejectionReason reports whether err is a breaker rejection and which
// state produced it.
func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, breaker.ErrCircuitIsolated):
		return breaker.StateIsolated.String(), true
	case errors.Is(err, breaker.ErrCircuitOpen):
		return breaker.StateOpen.String(), true
	default:
		return "", false
	}
}
