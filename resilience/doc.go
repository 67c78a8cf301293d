// Package resilience provides the failure-handling primitives used by the
// dispatcher: admission control, failure isolation and bounded retry.
//
// # Patterns
//
//   - Rate Limiter: a token bucket with integer tokens and lazy refill.
//     TryAcquire never blocks.
//
//   - Circuit Breaker: a closed/open/half-open state machine around a
//     primary operation, with a fallback that runs when the circuit is open
//     or has just tripped.
//
//   - Retry: bounded attempts with pure exponential doubling between them.
//
// All time reads and waits go through a Clock, so tests can drive the
// patterns with a ManualClock instead of sleeping.
//
// # Usage
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    MaxTokens:  100,
//	    RefillRate: 1.0 / 36, // one token every 36 seconds
//	})
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 3,
//	    SuccessThreshold: 2,
//	    Timeout:          5 * time.Second,
//	})
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: time.Second,
//	})
//
//	if !rl.TryAcquire() {
//	    return resilience.ErrRateLimitExceeded
//	}
//	err := cb.Execute(ctx,
//	    func(ctx context.Context) error { return retry.Execute(ctx, callPrimary) },
//	    func(ctx context.Context) error { return retry.Execute(ctx, callSecondary) },
//	)
package resilience
