package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// BreakerChecker publishes one circuit's state as a health probe.
//
// Closed maps to Healthy, HalfOpen to Degraded (the resource is being
// probed), and Open or Isolated to Unhealthy. The result carries the live
// circuit snapshot in Result.Metrics.
type BreakerChecker struct {
	cb *breaker.Breaker
}

// NewBreakerChecker creates a checker for the given breaker.
func NewBreakerChecker(cb *breaker.Breaker) *BreakerChecker {
	return &BreakerChecker{cb: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return "breaker:" + c.cb.Name()
}

// Check grades the breaker's current state.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	return checkBreaker(ctx, c.cb)
}

// checkBreaker reads one circuit and grades it. Shared by BreakerChecker
// and the fleet's registry sweep; reads live counters, no call is made.
func checkBreaker(ctx context.Context, cb *breaker.Breaker) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("probe cancelled", err)
	}

	m := cb.Metrics()
	r := Result{
		Status:    StatusOf(m.State),
		Metrics:   &m,
		CheckedAt: time.Now(),
	}

	switch m.State {
	case breaker.StateClosed:
		r.Message = "circuit closed"
	case breaker.StateHalfOpen:
		r.Message = "circuit half-open, probing recovery"
	case breaker.StateOpen:
		r.Message = fmt.Sprintf("circuit open after %d consecutive opens", m.ConsecutiveOpens)
		r.Err = breaker.ErrCircuitOpen
	case breaker.StateIsolated:
		r.Message = "circuit isolated by operator"
		r.Err = breaker.ErrCircuitIsolated
	default:
		r.Message = "circuit in unknown state"
		r.Err = ErrUnknownState
	}
	return r
}
