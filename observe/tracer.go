package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Meta contains metadata about a circuit breaker for telemetry purposes.
type Meta struct {
	Breaker  string // Breaker name (required)
	Resource string // Protected resource or backend (optional)
	Version  string // Service version (optional)
}

// SpanName returns the deterministic span name for executions through this breaker.
// Format: breaker.exec.<resource>.<breaker> or breaker.exec.<breaker>
func (m Meta) SpanName() string {
	if m.Resource != "" {
		return "breaker.exec." + m.Resource + "." + m.Breaker
	}
	return "breaker.exec." + m.Breaker
}

// ID returns the fully qualified breaker identifier.
// Constructed from resource and breaker name.
func (m Meta) ID() string {
	if m.Resource != "" {
		return m.Resource + "." + m.Breaker
	}
	return m.Breaker
}

// Validate checks that required metadata is present.
func (m Meta) Validate() error {
	if m.Breaker == "" {
		return ErrMissingBreakerName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with breaker-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an execution through the breaker.
	StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with breaker metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	attrs := []attribute.KeyValue{
		attribute.String("breaker.id", meta.ID()),
		attribute.String("breaker.name", meta.Breaker),
		attribute.Bool("breaker.error", false), // Will be updated in EndSpan if error
	}

	if meta.Resource != "" {
		attrs = append(attrs, attribute.String("breaker.resource", meta.Resource))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("breaker.version", meta.Version))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("breaker.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
