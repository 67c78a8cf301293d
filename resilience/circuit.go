package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the primary is skipped and the fallback serves requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the primary recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateClosed, StateOpen, StateHalfOpen:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("resilience: invalid circuit state %d", int(s))
	}
}

// Op is an operation guarded by a resilience pattern.
type Op func(ctx context.Context) error

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the failure count that opens the circuit.
	// Default: 3
	FailureThreshold int

	// SuccessThreshold is the number of half-open successes that close
	// the circuit again.
	// Default: 2
	SuccessThreshold int

	// Timeout is how long the circuit stays open after the last failure
	// before the primary is probed again.
	// Default: 5 seconds
	Timeout time.Duration

	// Clock supplies the current time.
	// Default: SystemClock()
	Clock Clock

	// OnStateChange is called when the circuit state changes. It runs
	// after the breaker's lock is released.
	OnStateChange func(from, to State)
}

// CircuitBreaker implements the circuit breaker pattern with a fallback.
//
// The failure count is only zeroed by a success-driven reset. Entering
// half-open keeps it, so a failed probe reopens the circuit at once.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 3
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Clock == nil {
		config.Clock = SystemClock()
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs primary through the circuit breaker.
//
// While the circuit is open and the timeout has not elapsed, only fallback
// runs. Otherwise primary runs; if its failure trips the circuit, fallback
// runs and its result is returned. A failure that does not trip the circuit
// is returned as is. A nil fallback makes an open circuit return
// ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(ctx context.Context, primary, fallback Op) error {
	if !cb.beforeRequest() {
		if fallback == nil {
			return ErrCircuitOpen
		}
		if err := fallback(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return nil
	}

	err := primary(ctx)
	if err == nil {
		cb.onSuccess()
		return nil
	}

	if cb.onFailure() && fallback != nil {
		return fallback(ctx)
	}
	return err
}

// beforeRequest reports whether primary may run, moving an expired open
// circuit to half-open.
func (cb *CircuitBreaker) beforeRequest() bool {
	cb.mu.Lock()

	if cb.state != StateOpen {
		cb.mu.Unlock()
		return true
	}

	if cb.config.Clock.Now().Sub(cb.lastFailure) <= cb.config.Timeout {
		cb.mu.Unlock()
		return false
	}
	cb.state = StateHalfOpen
	cb.mu.Unlock()

	cb.notify(StateOpen, StateHalfOpen)
	return true
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.resetLocked()
		}
	case StateClosed, StateOpen:
		// Every success outside probation is a full reset, so isolated
		// failures never accumulate.
		cb.resetLocked()
	}

	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

// onFailure records a failure and reports whether the circuit is now open.
func (cb *CircuitBreaker) onFailure() bool {
	cb.mu.Lock()
	from := cb.state

	cb.failures++
	if cb.failures >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.lastFailure = cb.config.Clock.Now()
	}

	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
	return to == StateOpen
}

func (cb *CircuitBreaker) resetLocked() {
	cb.failures = 0
	cb.successes = 0
	cb.state = StateClosed
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// State returns the current circuit state. Reading the state never moves
// an open circuit to half-open; only Execute does.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	oldState := cb.state
	cb.resetLocked()
	cb.mu.Unlock()

	if oldState != StateClosed {
		cb.notify(oldState, StateClosed)
	}
}

// Metrics returns current circuit breaker metrics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.state,
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
}

// Config returns the circuit breaker configuration.
func (cb *CircuitBreaker) Config() CircuitBreakerConfig {
	return cb.config
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Successes   int
	LastFailure time.Time
}
