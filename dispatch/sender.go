package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/resilience"
)

// Provider roles.
const (
	RolePrimary   = "primary"
	RoleSecondary = "secondary"
)

// RetrySenderConfig configures a RetrySender.
type RetrySenderConfig struct {
	// Role labels the provider in logs and telemetry.
	// Default: RolePrimary
	Role string

	// Retry bounds the attempts and spaces them with exponential backoff.
	// Default: resilience.NewRetry(resilience.RetryConfig{})
	Retry *resilience.Retry

	// Logger receives attempt, retry and exhaustion entries.
	// Default: observe.NewNopLogger()
	Logger observe.Logger

	// Middleware wraps every attempt with a span and metrics.
	// Default: no instrumentation
	Middleware *observe.Middleware
}

// RetrySender delivers a message through one provider with bounded retry.
// A rejected message and a provider error are both retryable failures.
type RetrySender struct {
	provider Provider
	role     string
	retry    *resilience.Retry
	logger   observe.Logger
	mw       *observe.Middleware
}

// NewRetrySender creates a RetrySender for provider.
func NewRetrySender(provider Provider, config RetrySenderConfig) *RetrySender {
	if config.Role == "" {
		config.Role = RolePrimary
	}
	if config.Retry == nil {
		config.Retry = resilience.NewRetry(resilience.RetryConfig{})
	}
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}

	return &RetrySender{
		provider: provider,
		role:     config.Role,
		retry:    config.Retry,
		logger: config.Logger.With(
			observe.Field{Key: "provider", Value: provider.Name()},
			observe.Field{Key: "role", Value: config.Role},
		),
		mw: config.Middleware,
	}
}

// Provider returns the wrapped provider.
func (s *RetrySender) Provider() Provider {
	return s.provider
}

// Send delivers task, retrying failed attempts. onRetry, if non-nil, runs
// before every backoff wait. The returned error wraps
// resilience.ErrMaxRetriesExceeded and the last attempt's error.
func (s *RetrySender) Send(ctx context.Context, task Task, onRetry func(attempt int, err error, delay time.Duration)) error {
	attemptFn := s.attemptFunc(task)
	key := observe.Field{Key: "key", Value: task.IdempotencyKey}

	attempt := 0
	err := s.retry.ExecuteNotify(ctx, func(ctx context.Context) error {
		attempt++
		meta := observe.AttemptMeta{
			Key:      task.IdempotencyKey,
			Provider: s.provider.Name(),
			Role:     s.role,
			Attempt:  attempt,
		}
		if err := attemptFn(ctx, meta); err != nil {
			return err
		}
		s.logger.Info(ctx, "message sent", key, observe.Field{Key: "attempt", Value: attempt})
		return nil
	}, func(n int, err error, delay time.Duration) {
		s.logger.Warn(ctx, "attempt failed, retrying",
			key,
			observe.Field{Key: "attempt", Value: n},
			observe.Field{Key: "delay", Value: delay},
			observe.Field{Key: "error", Value: err.Error()},
		)
		if onRetry != nil {
			onRetry(n, err, delay)
		}
	})
	if err != nil {
		s.logger.Error(ctx, "all retry attempts exhausted",
			key,
			observe.Field{Key: "attempts", Value: attempt},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	return err
}

// Op returns Send as a resilience.Op for use with a circuit breaker.
func (s *RetrySender) Op(task Task, onRetry func(attempt int, err error, delay time.Duration)) resilience.Op {
	return func(ctx context.Context) error {
		return s.Send(ctx, task, onRetry)
	}
}

func (s *RetrySender) attemptFunc(task Task) observe.AttemptFunc {
	fn := func(ctx context.Context, meta observe.AttemptMeta) error {
		ok, err := s.provider.Send(ctx, task.Recipient, task.Subject, task.Body)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrAttemptFailed, meta.Provider, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s rejected the message", ErrAttemptFailed, meta.Provider)
		}
		return nil
	}
	if s.mw != nil {
		return s.mw.WrapAttempt(fn)
	}
	return fn
}
