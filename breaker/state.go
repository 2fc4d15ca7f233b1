package breaker

// State represents the circuit state.
type State int

const (
	// StateClosed means calls flow through and outcomes are sampled.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting calls until the break
	// deadline passes.
	StateOpen
	// StateHalfOpen means the circuit admits a single probe call to test
	// whether the resource recovered.
	StateHalfOpen
	// StateIsolated means the circuit was manually isolated and rejects
	// all calls until explicitly reset.
	StateIsolated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	case StateIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}
