package resilience

import (
	"context"
	"fmt"
	"math"
	"time"
)

// maxShift bounds the doubling exponent so the delay cannot overflow.
const maxShift = 62

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 5
	MaxAttempts int

	// InitialDelay is the delay before the first retry. Each later delay
	// doubles the previous one.
	// Default: 1 second
	InitialDelay time.Duration

	// Clock performs the waits between attempts.
	// Default: SystemClock()
	Clock Clock

	// OnRetry is called before each retry wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry implements bounded retry with exponential backoff.
// Every error is retryable; there is no jitter and no delay cap.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.Clock == nil {
		config.Clock = SystemClock()
	}

	return &Retry{config: config}
}

// Execute runs the operation with retry logic.
//
// It returns nil on the first successful attempt. When all attempts fail
// the returned error wraps both ErrMaxRetriesExceeded and the last
// attempt's error. A context cancelled during a wait returns ctx.Err().
func (r *Retry) Execute(ctx context.Context, op Op) error {
	return r.ExecuteNotify(ctx, op, nil)
}

// ExecuteNotify is Execute with an extra per-call callback that runs
// before each retry wait, after the configured OnRetry.
func (r *Retry) ExecuteNotify(ctx context.Context, op Op, onRetry func(attempt int, err error, delay time.Duration)) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't wait after the last attempt
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.Delay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}

		if err := r.config.Clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, r.config.MaxAttempts, lastErr)
}

// Delay returns the wait that follows the given failed attempt:
// InitialDelay * 2^(attempt-1).
func (r *Retry) Delay(attempt int) time.Duration {
	shift := attempt - 1
	if shift < 0 {
		shift = 0
	} else if shift > maxShift {
		shift = maxShift
	}

	base := int64(r.config.InitialDelay)
	multiplier := int64(1) << shift
	if base > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(base * multiplier)
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
