package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// TaskMeta describes one message moving through the dispatch pipeline.
type TaskMeta struct {
	Key       string // Idempotency key (required)
	Recipient string // Destination address (optional)
	Queued    bool   // Whether the task came through the queue
}

// SpanName returns the span name for a task pipeline.
func (m TaskMeta) SpanName() string {
	return "dispatch.task"
}

// AttemptMeta describes a single provider attempt.
type AttemptMeta struct {
	Key      string // Idempotency key of the task
	Provider string // Provider name (required)
	Role     string // "primary" or "secondary"
	Attempt  int    // 1-based attempt number
}

// SpanName returns the deterministic span name for this attempt.
// Format: dispatch.attempt.<provider>
func (m AttemptMeta) SpanName() string {
	return "dispatch.attempt." + m.Provider
}

// Tracer wraps OpenTelemetry tracing with dispatch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartTask starts a span covering a task's whole pipeline.
	StartTask(ctx context.Context, meta TaskMeta) (context.Context, trace.Span)

	// StartAttempt starts a span for one provider attempt.
	StartAttempt(ctx context.Context, meta AttemptMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartTask(ctx context.Context, meta TaskMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("dispatch.key", meta.Key),
		attribute.Bool("dispatch.queued", meta.Queued),
	}
	if meta.Recipient != "" {
		attrs = append(attrs, attribute.String("dispatch.recipient", meta.Recipient))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) StartAttempt(ctx context.Context, meta AttemptMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("dispatch.key", meta.Key),
		attribute.String("dispatch.provider", meta.Provider),
		attribute.Int("dispatch.attempt", meta.Attempt),
		attribute.Bool("dispatch.error", false), // updated in EndSpan
	}
	if meta.Role != "" {
		attrs = append(attrs, attribute.String("dispatch.role", meta.Role))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("dispatch.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
