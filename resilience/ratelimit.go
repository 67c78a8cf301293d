package resilience

import (
	"context"
	"math"
	"sync"
	"time"
)

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// MaxTokens is the bucket capacity and the initial token count.
	// Zero is valid and rejects every request; negative values are
	// treated as zero.
	MaxTokens int

	// RefillRate is the number of tokens added per second. Fractional
	// rates are allowed (1.0/36 adds one token every 36 seconds).
	// Zero or negative means the bucket never refills.
	RefillRate float64

	// Clock supplies the current time.
	// Default: SystemClock()
	Clock Clock
}

// RateLimiter implements a token bucket rate limiter with whole tokens.
//
// Refill is lazy: it is computed only when tokens are requested, and the
// refill timestamp advances only when at least one whole token was added,
// so frequent calls never lose fractional progress.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.MaxTokens < 0 {
		config.MaxTokens = 0
	}
	if config.RefillRate < 0 {
		config.RefillRate = 0
	}
	if config.Clock == nil {
		config.Clock = SystemClock()
	}

	return &RateLimiter{
		config:     config,
		tokens:     config.MaxTokens,
		lastRefill: config.Clock.Now(),
	}
}

// TryAcquire takes one token if available. It never blocks.
func (rl *RateLimiter) TryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// Execute runs the operation if a token is available.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if !rl.TryAcquire() {
		return ErrRateLimitExceeded
	}

	return op(ctx)
}

func (rl *RateLimiter) refillLocked() {
	if rl.config.RefillRate == 0 {
		return
	}

	now := rl.config.Clock.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed <= 0 {
		return
	}

	add := math.Floor(elapsed.Seconds() * rl.config.RefillRate)
	if add < 1 {
		return
	}

	// Cap at bucket size
	if add >= float64(rl.config.MaxTokens-rl.tokens) {
		rl.tokens = rl.config.MaxTokens
	} else {
		rl.tokens += int(add)
	}
	rl.lastRefill = now
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset resets the rate limiter to full capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = rl.config.MaxTokens
	rl.lastRefill = rl.config.Clock.Now()
}

// Config returns the rate limiter configuration.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.config
}
