// Package health exposes circuit-breaker state as health checks.
//
// A breaker already knows how the resource behind it is doing: a closed
// circuit means traffic flows, a half-open circuit means recovery is being
// probed, an open or isolated circuit means the resource is unavailable.
// This package grades those states and folds a whole registry of breakers
// into one readiness signal.
//
// # Checking a Breaker
//
//	cb, _ := breaker.New(cfg)
//	check := health.NewBreakerChecker(cb)
//
//	result := check.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("circuit %s: %s", cb.Name(), result.Message)
//	}
//
// Result.Metrics carries the circuit snapshot behind the verdict.
//
// # Reporting on a Fleet
//
// A Fleet watches a breaker registry and reports on every circuit in it,
// live, alongside any auxiliary probes:
//
//	fleet := health.NewFleet()
//	fleet.Watch(registry)
//	fleet.Register("db-ping", pingChecker)
//
//	report := fleet.Report(ctx)
//	if report.Status == health.StatusUnhealthy { ... }
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe driven by breaker state
//	http.Handle("/readyz", health.ReadinessHandler(fleet))
//
//	// Detailed report with circuit statistics
//	http.Handle("/health", health.DetailedHandler(fleet))
//
//	// Raw per-breaker states
//	http.Handle("/breakers", health.StatesHandler(registry))
package health
