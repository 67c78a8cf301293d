// Package health reports whether a dispatcher can currently deliver
// messages.
//
// A Checker reports one component as Healthy, Degraded or Unhealthy. The
// Aggregator runs several checkers concurrently and folds their results
// into one status, and the HTTP handlers expose that status for liveness
// and readiness probes.
//
// # Dispatcher checks
//
// CircuitChecker, QueueChecker and LimiterChecker read the dispatcher's
// circuit state, backlog and token bucket:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewCircuitChecker(d))
//	agg.Register(health.NewQueueChecker(d, health.QueueCheckerConfig{}))
//	agg.Register(health.NewLimiterChecker(d))
//
// An open circuit is Degraded rather than Unhealthy: the secondary provider
// still serves every message while the primary is skipped.
//
// # HTTP
//
//	r := chi.NewRouter()
//	health.Mount(r, agg)
//
// mounts /healthz (liveness), /readyz (readiness) and /health (JSON detail).
package health
