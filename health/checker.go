package health

import (
	"context"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// Status grades how a guarded resource is doing.
type Status int

const (
	// StatusHealthy means the circuit is closed and traffic flows.
	StatusHealthy Status = iota
	// StatusDegraded means the circuit is probing recovery.
	StatusDegraded
	// StatusUnhealthy means the circuit is rejecting calls.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// StatusOf maps a circuit state onto a health status: closed is healthy,
// half-open is degraded, everything else is unhealthy.
func StatusOf(s breaker.State) Status {
	switch s {
	case breaker.StateClosed:
		return StatusHealthy
	case breaker.StateHalfOpen:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

// Result is the outcome of probing one guarded resource.
type Result struct {
	// Status is the graded verdict.
	Status Status

	// Message says why in one line.
	Message string

	// Metrics is the circuit snapshot behind the verdict, set when the
	// probe read a breaker.
	Metrics *breaker.BreakerMetrics

	// Duration is how long the probe took.
	Duration time.Duration

	// CheckedAt is when the probe ran.
	CheckedAt time.Time

	// Err carries the failure behind an unhealthy verdict.
	Err error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Err:       err,
		CheckedAt: time.Now(),
	}
}

// Checker probes one resource. BreakerChecker covers circuits; custom
// probes (a ping to the backend a circuit guards, say) implement it via
// CheckerFunc.
type Checker interface {
	// Name identifies the probe in reports.
	Name() string

	// Check runs the probe.
	Check(ctx context.Context) Result
}

// CheckerFunc adapts an ordinary function into a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name identifies the probe in reports.
func (f *CheckerFunc) Name() string {
	return f.name
}

// Check runs the probe.
func (f *CheckerFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
