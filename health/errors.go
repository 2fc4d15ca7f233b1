package health

import "errors"

var (
	// ErrProbeTimeout indicates a probe outran the fleet's timeout.
	ErrProbeTimeout = errors.New("health: probe timed out")

	// ErrUnknownCheck indicates no probe or breaker is registered under
	// the requested name.
	ErrUnknownCheck = errors.New("health: unknown check")

	// ErrUnknownState indicates a breaker reported a state this package
	// does not know how to grade.
	ErrUnknownState = errors.New("health: circuit in unknown state")
)
