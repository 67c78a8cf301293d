package provider

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
)

// ChaosConfig configures a Chaos provider.
type ChaosConfig struct {
	// Name identifies the provider.
	// Default: "chaos"
	Name string

	// FailPercent is the chance, in percent, that a send is rejected.
	// Values are clamped to [0, 100].
	FailPercent float64

	// Latency is how long each send takes. A cancelled ctx cuts it short
	// and fails the send with ctx.Err().
	Latency time.Duration

	// Rand is the source of randomness.
	// Default: a PCG source seeded from the global generator
	Rand *rand.Rand

	// Logger receives one entry per send.
	// Default: observe.NewNopLogger()
	Logger observe.Logger
}

// Chaos is a provider that randomly rejects a share of messages.
type Chaos struct {
	config ChaosConfig

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewChaos creates a Chaos provider.
func NewChaos(config ChaosConfig) *Chaos {
	if config.Name == "" {
		config.Name = "chaos"
	}
	config.FailPercent = min(max(config.FailPercent, 0), 100)
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if config.Logger == nil {
		config.Logger = observe.NewNopLogger()
	}
	config.Logger = config.Logger.With(observe.Field{Key: "provider", Value: config.Name})

	return &Chaos{config: config, rng: config.Rand}
}

// Name returns the configured name.
func (c *Chaos) Name() string { return c.config.Name }

// Send simulates a delivery. It never returns an error except for a
// cancelled ctx; a simulated failure is (false, nil).
func (c *Chaos) Send(ctx context.Context, to, subject, body string) (bool, error) {
	c.config.Logger.Info(ctx, "mail to recipient",
		observe.Field{Key: "to", Value: to},
		observe.Field{Key: "subject", Value: subject},
	)

	if c.config.Latency > 0 {
		t := time.NewTimer(c.config.Latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	c.mu.Lock()
	roll := c.rng.Float64() * 100
	c.mu.Unlock()

	return roll >= c.config.FailPercent, nil
}

var _ dispatch.Provider = (*Chaos)(nil)
