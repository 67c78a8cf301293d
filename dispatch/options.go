package dispatch

import (
	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/resilience"
	"github.com/jonwraymond/dispatchops/store"
)

// DefaultRateLimit is the limiter used when WithRateLimit is not given:
// a burst of 100 messages, then one message every 36 seconds.
var DefaultRateLimit = resilience.RateLimiterConfig{
	MaxTokens:  100,
	RefillRate: 1.0 / 36,
}

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	rateLimit  resilience.RateLimiterConfig
	breaker    resilience.CircuitBreakerConfig
	retry      resilience.RetryConfig
	clock      resilience.Clock
	sent       store.Store[bool]
	statuses   store.Store[Status]
	logger     observe.Logger
	middleware *observe.Middleware
}

func defaultOptions() options {
	return options{
		rateLimit: DefaultRateLimit,
	}
}

// WithRateLimit sets the token bucket configuration.
func WithRateLimit(config resilience.RateLimiterConfig) Option {
	return func(o *options) { o.rateLimit = config }
}

// WithCircuitBreaker sets the circuit breaker configuration. A configured
// OnStateChange still runs after the dispatcher's own logging and metrics.
func WithCircuitBreaker(config resilience.CircuitBreakerConfig) Option {
	return func(o *options) { o.breaker = config }
}

// WithRetry sets the retry configuration shared by both providers. Each
// provider still counts its own attempts.
func WithRetry(config resilience.RetryConfig) Option {
	return func(o *options) { o.retry = config }
}

// WithClock sets the clock for every component whose config has none.
func WithClock(clock resilience.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithSentStore sets the idempotency store.
// Default: an unbounded store.MemoryStore
func WithSentStore(s store.Store[bool]) Option {
	return func(o *options) { o.sent = s }
}

// WithStatusStore sets the status store.
// Default: an unbounded store.MemoryStore
func WithStatusStore(s store.Store[Status]) Option {
	return func(o *options) { o.statuses = s }
}

// WithLogger sets the logger.
// Default: observe.NewNopLogger()
func WithLogger(logger observe.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMiddleware instruments tasks and provider attempts.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *options) { o.middleware = mw }
}
