package health_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/dispatchops/health"
	"github.com/jonwraymond/dispatchops/resilience"
)

type dispatcherStats struct{}

func (dispatcherStats) CircuitState() resilience.State { return resilience.StateOpen }
func (dispatcherStats) QueueDepth() int                { return 2 }
func (dispatcherStats) AvailableTokens() int           { return 40 }

func ExampleNewCircuitChecker() {
	c := health.NewCircuitChecker(dispatcherStats{})
	r := c.Check(context.Background())

	fmt.Println(r.Status, "-", r.Message)
	// Output:
	// degraded - circuit open, delivering through secondary provider
}

func ExampleAggregator() {
	var d dispatcherStats

	agg := health.NewAggregator()
	agg.Register(health.NewCircuitChecker(d))
	agg.Register(health.NewQueueChecker(d, health.QueueCheckerConfig{WarningDepth: 10}))
	agg.Register(health.NewLimiterChecker(d))

	results := agg.CheckAll(context.Background())
	for _, name := range agg.Names() {
		fmt.Printf("%s: %s\n", name, results[name].Status)
	}
	fmt.Println("overall:", health.Overall(results))
	// Output:
	// circuit: degraded
	// queue: healthy
	// rate_limit: healthy
	// overall: degraded
}
