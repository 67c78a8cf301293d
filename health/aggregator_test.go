package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func staticChecker(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()
	if agg.config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", agg.config.Timeout)
	}

	agg = NewAggregator(AggregatorConfig{Timeout: time.Second, MaxConcurrency: 2})
	if agg.config.Timeout != time.Second || agg.config.MaxConcurrency != 2 {
		t.Errorf("config = %+v", agg.config)
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("b", Healthy("ok")))
	agg.Register(staticChecker("a", Healthy("ok")))
	agg.Register(staticChecker("b", Degraded("replaced")))

	names := agg.Names()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("Names() = %v, want [b a]", names)
	}

	r, err := agg.Check(context.Background(), "b")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("re-registered checker status = %v, want degraded", r.Status)
	}
}

func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("a", Healthy("ok")))
	agg.Unregister("a")
	agg.Unregister("missing")

	if names := agg.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want empty", names)
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "nope"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register(staticChecker("a", Healthy("ok")))
	agg.Register(staticChecker("b", Degraded("slow")))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results["b"].Status != StatusDegraded {
		t.Errorf("results[b].Status = %v, want degraded", results["b"].Status)
	}
	if results["a"].Duration < 0 {
		t.Errorf("Duration = %v, want >= 0", results["a"].Duration)
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	results := NewAggregator().CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if Overall(results) != StatusHealthy {
		t.Errorf("Overall(empty) = %v, want healthy", Overall(results))
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	block := make(chan struct{})
	defer close(block)

	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		<-block
		return Healthy("late")
	}))

	r := agg.CheckAll(context.Background())["slow"]
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("slow check = %+v, want unhealthy with ErrCheckTimeout", r)
	}
}

func TestAggregator_MaxConcurrency(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{MaxConcurrency: 1})

	var active, peak atomic.Int32
	for _, name := range []string{"a", "b", "c", "d"} {
		agg.Register(NewCheckerFunc(name, func(ctx context.Context) Result {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			return Healthy("ok")
		}))
	}

	if got := len(agg.CheckAll(context.Background())); got != 4 {
		t.Fatalf("len(results) = %d, want 4", got)
	}
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"one unhealthy", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.results); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}
