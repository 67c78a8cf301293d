package observe

import (
	"context"
	"time"
)

// AttemptFunc is a single provider attempt.
type AttemptFunc func(ctx context.Context, meta AttemptMeta) error

// Middleware wraps dispatch work with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: the returned functions are safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped functions are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewNoopTracer()
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Metrics returns the metrics the middleware records into.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// WrapAttempt wraps a provider attempt with a span, attempt metrics and a
// log line.
func (m *Middleware) WrapAttempt(fn AttemptFunc) AttemptFunc {
	return func(ctx context.Context, meta AttemptMeta) error {
		ctx, span := m.tracer.StartAttempt(ctx, meta)
		start := time.Now()

		err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordAttempt(ctx, meta, duration, err)

		fields := []Field{
			{Key: "key", Value: meta.Key},
			{Key: "provider", Value: meta.Provider},
			{Key: "attempt", Value: meta.Attempt},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			m.logger.Warn(ctx, "provider attempt failed", fields...)
		} else {
			m.logger.Debug(ctx, "provider attempt succeeded", fields...)
		}

		return err
	}
}

// StartTask opens the span for a task pipeline. The returned function must
// be called exactly once with the pipeline's outcome.
func (m *Middleware) StartTask(ctx context.Context, meta TaskMeta) (context.Context, func(outcome string, err error)) {
	ctx, span := m.tracer.StartTask(ctx, meta)
	start := time.Now()

	return ctx, func(outcome string, err error) {
		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordTask(ctx, outcome, duration)
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
