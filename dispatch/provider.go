package dispatch

import "context"

// Provider is an external delivery capability.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: (false, nil) and a non-nil error are both treated as a failed
//   attempt and retried.
type Provider interface {
	// Name identifies the provider in logs, spans and metrics.
	Name() string

	// Send delivers one message and reports whether it was accepted.
	Send(ctx context.Context, to, subject, body string) (bool, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, to, subject, body string) (bool, error)
}

// Name returns ProviderName.
func (p ProviderFunc) Name() string {
	return p.ProviderName
}

// Send calls Fn.
func (p ProviderFunc) Send(ctx context.Context, to, subject, body string) (bool, error) {
	return p.Fn(ctx, to, subject, body)
}

var _ Provider = ProviderFunc{}
