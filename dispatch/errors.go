package dispatch

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/dispatchops/resilience"
)

// Sentinel errors for dispatch operations.
var (
	// ErrRateLimited indicates the message was rejected by the rate limiter.
	// It matches resilience.ErrRateLimitExceeded as well.
	ErrRateLimited = fmt.Errorf("dispatch: %w", resilience.ErrRateLimitExceeded)

	// ErrAttemptFailed indicates a single provider attempt did not deliver.
	ErrAttemptFailed = errors.New("dispatch: provider attempt failed")

	// ErrBothProvidersFailed indicates the secondary provider also failed
	// after the circuit diverted the message to it.
	ErrBothProvidersFailed = errors.New("dispatch: both providers failed")

	// ErrClosed indicates the dispatcher no longer accepts messages.
	ErrClosed = errors.New("dispatch: dispatcher is closed")

	// ErrUnknownStatus indicates a status name that does not parse.
	ErrUnknownStatus = errors.New("dispatch: unknown status")

	// ErrNilProvider indicates a nil primary or secondary provider.
	ErrNilProvider = errors.New("dispatch: provider is nil")
)
