package dispatch

import "fmt"

// Status is the latest known state of a message, keyed by idempotency key.
type Status int

const (
	// StatusPending means the message passed admission and is being sent.
	StatusPending Status = iota
	// StatusSent means a provider accepted the message.
	StatusSent
	// StatusFailed means the message was rate limited or every provider
	// attempt failed.
	StatusFailed
	// StatusRetrying means an attempt failed and a backoff wait is running.
	StatusRetrying
	// StatusFallback means the message was handed to the secondary provider.
	StatusFallback
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSent:
		return "sent"
	case StatusFailed:
		return "failed"
	case StatusRetrying:
		return "retrying"
	case StatusFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ParseStatus parses a status name produced by String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "sent":
		return StatusSent, nil
	case "failed":
		return StatusFailed, nil
	case "retrying":
		return StatusRetrying, nil
	case "fallback":
		return StatusFallback, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s.String() == "unknown" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Outcome is how a single pipeline run ended.
type Outcome int

const (
	// OutcomeFailed means every path failed; the message was not delivered.
	OutcomeFailed Outcome = iota
	// OutcomeSent means a provider accepted the message in this run.
	OutcomeSent
	// OutcomeDuplicate means the key was already sent and nothing was resent.
	OutcomeDuplicate
	// OutcomeRateLimited means the rate limiter rejected the message.
	OutcomeRateLimited
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeSent:
		return "sent"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Delivered reports whether the message counts as sent.
func (o Outcome) Delivered() bool {
	switch o {
	case OutcomeSent, OutcomeDuplicate:
		return true
	default:
		return false
	}
}
