package provider

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/dispatchops/observe"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNewChaos_Defaults(t *testing.T) {
	c := NewChaos(ChaosConfig{FailPercent: 250})
	if c.Name() != "chaos" {
		t.Errorf("Name() = %q, want chaos", c.Name())
	}
	if c.config.FailPercent != 100 {
		t.Errorf("FailPercent = %v, want clamped to 100", c.config.FailPercent)
	}

	c = NewChaos(ChaosConfig{FailPercent: -5})
	if c.config.FailPercent != 0 {
		t.Errorf("FailPercent = %v, want clamped to 0", c.config.FailPercent)
	}
}

func TestChaos_Extremes(t *testing.T) {
	ctx := context.Background()
	always := NewChaos(ChaosConfig{FailPercent: 0, Rand: seeded()})
	never := NewChaos(ChaosConfig{FailPercent: 100, Rand: seeded()})

	for i := 0; i < 100; i++ {
		if ok, err := always.Send(ctx, "a@example.com", "s", "b"); !ok || err != nil {
			t.Fatalf("FailPercent 0: Send() = (%v, %v), want (true, nil)", ok, err)
		}
		if ok, err := never.Send(ctx, "a@example.com", "s", "b"); ok || err != nil {
			t.Fatalf("FailPercent 100: Send() = (%v, %v), want (false, nil)", ok, err)
		}
	}
}

func TestChaos_FailureRate(t *testing.T) {
	c := NewChaos(ChaosConfig{FailPercent: 20, Rand: seeded()})
	ctx := context.Background()

	const n = 10000
	failed := 0
	for i := 0; i < n; i++ {
		if ok, _ := c.Send(ctx, "a@example.com", "s", "b"); !ok {
			failed++
		}
	}

	if rate := float64(failed) / n; rate < 0.17 || rate > 0.23 {
		t.Errorf("failure rate = %.3f, want about 0.20", rate)
	}
}

func TestChaos_Deterministic(t *testing.T) {
	a := NewChaos(ChaosConfig{FailPercent: 50, Rand: seeded()})
	b := NewChaos(ChaosConfig{FailPercent: 50, Rand: seeded()})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		okA, _ := a.Send(ctx, "x", "s", "b")
		okB, _ := b.Send(ctx, "x", "s", "b")
		if okA != okB {
			t.Fatalf("send %d differs with equal seeds", i)
		}
	}
}

func TestChaos_LatencyHonorsContext(t *testing.T) {
	c := NewChaos(ChaosConfig{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Send(ctx, "a@example.com", "s", "b")
	if ok || !errors.Is(err, context.Canceled) {
		t.Errorf("Send() = (%v, %v), want (false, context.Canceled)", ok, err)
	}
}

func TestChaos_LogsWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewChaos(ChaosConfig{
		Name:   "EmailProvider1",
		Logger: observe.NewLoggerWithWriter("info", &buf),
	})

	_, _ = c.Send(context.Background(), "test@example.com", "Hello", "top secret body")

	out := buf.String()
	for _, want := range []string{"EmailProvider1", "test@example.com", "Hello"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "top secret body") {
		t.Errorf("log contains the message body:\n%s", out)
	}
}
