package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/dispatchops/resilience"
)

// CircuitSource exposes a circuit breaker's state.
type CircuitSource interface {
	CircuitState() resilience.State
}

// QueueSource exposes the number of queued tasks.
type QueueSource interface {
	QueueDepth() int
}

// LimiterSource exposes the rate limiter's token count.
type LimiterSource interface {
	AvailableTokens() int
}

// CircuitChecker reports the dispatcher's circuit breaker.
// Closed is healthy; open and half-open are degraded because the secondary
// provider keeps delivering.
type CircuitChecker struct {
	src CircuitSource
}

// NewCircuitChecker creates a CircuitChecker.
func NewCircuitChecker(src CircuitSource) *CircuitChecker {
	return &CircuitChecker{src: src}
}

// Name returns "circuit".
func (c *CircuitChecker) Name() string { return "circuit" }

// Check reads the circuit state.
func (c *CircuitChecker) Check(ctx context.Context) Result {
	state := c.src.CircuitState()
	details := map[string]any{"state": state.String()}

	switch state {
	case resilience.StateClosed:
		return Healthy("primary provider in use").WithDetails(details)
	case resilience.StateOpen:
		return Degraded("circuit open, delivering through secondary provider").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing primary provider").WithDetails(details)
	default:
		return Unhealthy("unknown circuit state", ErrCheckFailed).WithDetails(details)
	}
}

// QueueCheckerConfig configures the queue depth checker.
type QueueCheckerConfig struct {
	// WarningDepth is the backlog at which the queue is degraded.
	// Default: 100
	WarningDepth int

	// CriticalDepth is the backlog at which the queue is unhealthy.
	// Default: 1000
	CriticalDepth int
}

// QueueChecker reports the dispatcher's backlog.
type QueueChecker struct {
	src    QueueSource
	config QueueCheckerConfig
}

// NewQueueChecker creates a QueueChecker.
func NewQueueChecker(src QueueSource, config QueueCheckerConfig) *QueueChecker {
	if config.WarningDepth <= 0 {
		config.WarningDepth = 100
	}
	if config.CriticalDepth <= 0 {
		config.CriticalDepth = 1000
	}
	if config.CriticalDepth < config.WarningDepth {
		config.CriticalDepth = config.WarningDepth
	}
	return &QueueChecker{src: src, config: config}
}

// Name returns "queue".
func (q *QueueChecker) Name() string { return "queue" }

// Check compares the backlog with the configured thresholds.
func (q *QueueChecker) Check(ctx context.Context) Result {
	depth := q.src.QueueDepth()
	details := map[string]any{
		"depth":          depth,
		"warning_depth":  q.config.WarningDepth,
		"critical_depth": q.config.CriticalDepth,
	}

	switch {
	case depth >= q.config.CriticalDepth:
		return Unhealthy(fmt.Sprintf("queue backlog critical: %d", depth), ErrCheckFailed).WithDetails(details)
	case depth >= q.config.WarningDepth:
		return Degraded(fmt.Sprintf("queue backlog high: %d", depth)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("queue backlog: %d", depth)).WithDetails(details)
	}
}

// LimiterChecker reports whether the rate limiter has tokens left.
// An empty bucket is degraded: new messages fail until it refills.
type LimiterChecker struct {
	src LimiterSource
}

// NewLimiterChecker creates a LimiterChecker.
func NewLimiterChecker(src LimiterSource) *LimiterChecker {
	return &LimiterChecker{src: src}
}

// Name returns "rate_limit".
func (l *LimiterChecker) Name() string { return "rate_limit" }

// Check reads the token count.
func (l *LimiterChecker) Check(ctx context.Context) Result {
	tokens := l.src.AvailableTokens()
	details := map[string]any{"tokens": tokens}

	if tokens <= 0 {
		return Degraded("rate limit exhausted").WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d tokens available", tokens)).WithDetails(details)
}
