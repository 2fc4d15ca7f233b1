package breaker

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for breaker rejections.
var (
	// ErrCircuitOpen is returned when the circuit is rejecting calls
	// because of recent failures. Rejections carrying a retry hint are
	// *BrokenCircuitError values; errors.Is matches them against this
	// sentinel.
	ErrCircuitOpen = errors.New("breaker: circuit is open")

	// ErrCircuitIsolated is returned when the circuit was manually
	// isolated. There is no retry hint; the circuit stays isolated until
	// Reset is called.
	ErrCircuitIsolated = errors.New("breaker: circuit is isolated")
)

// BrokenCircuitError rejects a call while the circuit is open or while a
// recovery probe is already in flight.
type BrokenCircuitError struct {
	// RetryAfter is the time remaining until the circuit will admit a
	// probe. Zero when unknown (for example when another caller already
	// holds the probe slot).
	RetryAfter time.Duration
}

// Error returns the error message.
func (e *BrokenCircuitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("breaker: circuit is open, retry after %s", e.RetryAfter)
	}
	return "breaker: circuit is open"
}

// Is reports whether target is ErrCircuitOpen, so callers can test
// rejections with errors.Is without caring about the retry hint.
func (e *BrokenCircuitError) Is(target error) bool {
	return target == ErrCircuitOpen
}
