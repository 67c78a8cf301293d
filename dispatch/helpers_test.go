package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonwraymond/dispatchops/resilience"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var errProviderDown = errors.New("provider down")

// fakeProvider records every call; fn decides the result of the nth call
// (1-based). A nil fn always accepts.
type fakeProvider struct {
	name string
	fn   func(n int) (bool, error)

	mu         sync.Mutex
	recipients []string
	active     int
	maxActive  int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Send(ctx context.Context, to, subject, body string) (bool, error) {
	p.mu.Lock()
	p.recipients = append(p.recipients, to)
	n := len(p.recipients)
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	if p.fn == nil {
		return true, nil
	}
	return p.fn(n)
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.recipients)
}

func (p *fakeProvider) Recipients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.recipients))
	copy(out, p.recipients)
	return out
}

func (p *fakeProvider) MaxActive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxActive
}

func okProvider(name string) *fakeProvider {
	return &fakeProvider{name: name}
}

func rejectingProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, fn: func(int) (bool, error) { return false, nil }}
}

func erroringProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, fn: func(int) (bool, error) { return false, errProviderDown }}
}

// failFirst rejects the first k calls and accepts the rest.
func failFirst(name string, k int) *fakeProvider {
	return &fakeProvider{name: name, fn: func(n int) (bool, error) { return n > k, nil }}
}

func task(key string) Task {
	return Task{
		Recipient:      "test@example.com",
		Subject:        "Hello",
		Body:           "This is a test email",
		IdempotencyKey: key,
	}
}

// newTestDispatcher builds a dispatcher on a manual clock with fast retry.
func newTestDispatcher(primary, secondary Provider, clock *resilience.ManualClock, opts ...Option) *Dispatcher {
	base := []Option{
		WithClock(clock),
		WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond}),
	}
	d, err := New(primary, secondary, append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return d
}
