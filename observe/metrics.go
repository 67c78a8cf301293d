package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records dispatch metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordTask records a finished task pipeline and its outcome
	// (sent, duplicate, rate_limited, failed).
	RecordTask(ctx context.Context, outcome string, duration time.Duration)

	// RecordAttempt records one provider attempt.
	RecordAttempt(ctx context.Context, meta AttemptMeta, duration time.Duration, err error)

	// RecordCircuitTransition records a circuit breaker state change.
	RecordCircuitTransition(ctx context.Context, from, to string)

	// AddQueueDepth moves the queue depth gauge by delta.
	AddQueueDepth(ctx context.Context, delta int64)
}

type metricsImpl struct {
	taskCount       metric.Int64Counter
	taskDuration    metric.Float64Histogram
	attemptCount    metric.Int64Counter
	attemptDuration metric.Float64Histogram
	circuitCount    metric.Int64Counter
	queueDepth      metric.Int64UpDownCounter
}

// NewMetrics creates a Metrics instance with instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	taskCount, err := meter.Int64Counter(
		"dispatch.tasks",
		metric.WithDescription("Number of finished task pipelines by outcome"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	taskDuration, err := meter.Float64Histogram(
		"dispatch.task.duration_ms",
		metric.WithDescription("Task pipeline duration in milliseconds, including backoff waits"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	attemptCount, err := meter.Int64Counter(
		"dispatch.attempts",
		metric.WithDescription("Number of provider attempts by provider and result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	attemptDuration, err := meter.Float64Histogram(
		"dispatch.attempt.duration_ms",
		metric.WithDescription("Provider attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	circuitCount, err := meter.Int64Counter(
		"dispatch.circuit.transitions",
		metric.WithDescription("Number of circuit breaker state changes"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter(
		"dispatch.queue.depth",
		metric.WithDescription("Tasks waiting in the dispatch queue"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		taskCount:       taskCount,
		taskDuration:    taskDuration,
		attemptCount:    attemptCount,
		attemptDuration: attemptDuration,
		circuitCount:    circuitCount,
		queueDepth:      queueDepth,
	}, nil
}

func (m *metricsImpl) RecordTask(ctx context.Context, outcome string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("dispatch.outcome", outcome))
	m.taskCount.Add(ctx, 1, opt)
	m.taskDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordAttempt(ctx context.Context, meta AttemptMeta, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	attrs := []attribute.KeyValue{
		attribute.String("dispatch.provider", meta.Provider),
		attribute.String("dispatch.result", result),
	}
	if meta.Role != "" {
		attrs = append(attrs, attribute.String("dispatch.role", meta.Role))
	}
	opt := metric.WithAttributes(attrs...)

	m.attemptCount.Add(ctx, 1, opt)
	m.attemptDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCircuitTransition(ctx context.Context, from, to string) {
	m.circuitCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("circuit.from", from),
		attribute.String("circuit.to", to),
	))
}

func (m *metricsImpl) AddQueueDepth(ctx context.Context, delta int64) {
	m.queueDepth.Add(ctx, delta)
}

// NewNoopMetrics returns metrics that record nothing.
func NewNoopMetrics() Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}
