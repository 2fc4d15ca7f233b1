package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution and state-transition metrics for circuit breakers.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records an admitted execution with duration and error status.
	RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error)

	// RecordRejection records an execution the breaker refused to admit.
	// The reason is the breaker state that caused the rejection ("open" or "isolated").
	RecordRejection(ctx context.Context, meta Meta, reason string)

	// RecordTransition records a state transition of the breaker.
	RecordTransition(ctx context.Context, meta Meta, from, to string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter           metric.Meter
	totalCount      metric.Int64Counter
	errorCount      metric.Int64Counter
	rejectedCount   metric.Int64Counter
	transitionCount metric.Int64Counter
	durationHist    metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"breaker.exec.total",
		metric.WithDescription("Total number of executions admitted by the breaker"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"breaker.exec.errors",
		metric.WithDescription("Total number of admitted executions that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	rejectedCount, err := meter.Int64Counter(
		"breaker.exec.rejected",
		metric.WithDescription("Total number of executions rejected without running"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	transitionCount, err := meter.Int64Counter(
		"breaker.transitions",
		metric.WithDescription("Total number of breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"breaker.exec.duration_ms",
		metric.WithDescription("Admitted execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:           meter,
		totalCount:      totalCount,
		errorCount:      errorCount,
		rejectedCount:   rejectedCount,
		transitionCount: transitionCount,
		durationHist:    durationHist,
	}, nil
}

// metaAttrs builds the common attribute set for a breaker.
func metaAttrs(meta Meta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("breaker.id", meta.ID()),
		attribute.String("breaker.name", meta.Breaker),
	}
	if meta.Resource != "" {
		attrs = append(attrs, attribute.String("breaker.resource", meta.Resource))
	}
	return attrs
}

// RecordExecution records metrics for an admitted execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error) {
	opt := metric.WithAttributes(metaAttrs(meta)...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordRejection records a fast-failed execution with the rejecting state.
func (m *metricsImpl) RecordRejection(ctx context.Context, meta Meta, reason string) {
	attrs := append(metaAttrs(meta), attribute.String("breaker.state", reason))
	m.rejectedCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTransition records a state transition with from/to attributes.
func (m *metricsImpl) RecordTransition(ctx context.Context, meta Meta, from, to string) {
	attrs := append(metaAttrs(meta),
		attribute.String("breaker.from", from),
		attribute.String("breaker.to", to),
	)
	m.transitionCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordRejection(ctx context.Context, meta Meta, reason string)    {}
func (m *noopMetrics) RecordTransition(ctx context.Context, meta Meta, from, to string) {}
