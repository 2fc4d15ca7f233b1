package breaker

import (
	"fmt"
	"time"
)

// DefaultBreakDuration is the cool-down used when a break-duration
// generator fails or yields a non-positive duration.
const DefaultBreakDuration = 30 * time.Second

// BreakSignal carries the window statistics available to a break-duration
// generator at the moment the circuit opens.
type BreakSignal struct {
	// Failures is the failure count in the live window.
	Failures uint64
	// Throughput is the total sample count in the live window.
	Throughput uint64
	// ConsecutiveOpens is how many times the circuit has opened without an
	// intervening recovery, including this one. Useful for growing the
	// cool-down on repeated failures.
	ConsecutiveOpens int
}

// BreakDurationFunc computes the cool-down for one open period. It is
// evaluated exactly once per open transition, never per rejected call, so
// the break deadline is stable for the whole period.
type BreakDurationFunc func(sig BreakSignal) (time.Duration, error)

// breakPolicy resolves the cool-down length for an open transition: a
// constant duration in fixed mode, a generator call in dynamic mode.
type breakPolicy struct {
	fixed time.Duration
	fn    BreakDurationFunc
}

// duration returns the cool-down for this open entry. Generator errors,
// panics, and non-positive results fall back to DefaultBreakDuration and
// are reported only through the logger, never to the caller.
func (p breakPolicy) duration(sig BreakSignal, logger Logger) time.Duration {
	if p.fn == nil {
		return p.fixed
	}

	d, err := p.eval(sig)
	if err != nil {
		logger.Warnf("breaker: break duration generator failed, using default %s: %v", DefaultBreakDuration, err)
		return DefaultBreakDuration
	}
	if d <= 0 {
		logger.Warnf("breaker: break duration generator returned %s, using default %s", d, DefaultBreakDuration)
		return DefaultBreakDuration
	}
	return d
}

// eval invokes the generator, converting a panic into an error.
func (p breakPolicy) eval(sig BreakSignal) (d time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = 0
			err = &policyPanicError{value: r}
		}
	}()
	return p.fn(sig)
}

type policyPanicError struct {
	value any
}

func (e *policyPanicError) Error() string {
	return fmt.Sprintf("breaker: break duration generator panicked: %v", e.value)
}
