package provider

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/dispatchops/dispatch"
)

// Static returns the same result for every send and counts calls.
type Static struct {
	ProviderName string
	Accept       bool
	Err          error

	calls atomic.Int64
}

// Accepting returns a Static provider that accepts every message.
func Accepting(name string) *Static {
	return &Static{ProviderName: name, Accept: true}
}

// Rejecting returns a Static provider that rejects every message.
func Rejecting(name string) *Static {
	return &Static{ProviderName: name}
}

// Name returns ProviderName.
func (s *Static) Name() string { return s.ProviderName }

// Send returns (Accept, Err).
func (s *Static) Send(context.Context, string, string, string) (bool, error) {
	s.calls.Add(1)
	return s.Accept, s.Err
}

// Calls returns how many times Send ran.
func (s *Static) Calls() int {
	return int(s.calls.Load())
}

var _ dispatch.Provider = (*Static)(nil)
