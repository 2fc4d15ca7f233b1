package breaker

import (
	"sync"
	"time"
)

// permit is the admission token handed to the gate. A probe permit marks
// the single trial call admitted while half-open.
type permit struct {
	probe bool
}

// machine owns the circuit state: the sampling window, the break deadline,
// the manual override, and the half-open probe slot form one shared mutable
// unit guarded by a single mutex. The critical section covers only
// admission checks and outcome recording; the wrapped call and all observer
// callbacks run outside it.
//
// Transitions are totally ordered per instance. Each transition is
// sequenced into the pending queue while the mutex is held and drained by
// whichever caller reaches flush first, so events reach observers in
// transition order without user code ever running under the lock.
type machine struct {
	name          string
	clock         Clock
	policy        breakPolicy
	failureRatio  float64
	minThroughput uint64
	logger        Logger
	notifier      *notifier

	mu               sync.Mutex
	state            State
	window           *slidingWindow
	breakDeadline    time.Time
	consecutiveOpens int
	probeInFlight    bool
	pending          []Event
	draining         bool
}

// admit decides whether a call may execute. It returns a permit on
// admission, or the rejection error. The lazy Open -> HalfOpen transition
// happens here: the first caller at or past the break deadline is selected
// as the probe, and racing callers observe either the occupied probe slot
// or the still-open circuit.
func (m *machine) admit() (permit, error) {
	now := m.clock.Now()

	m.mu.Lock()
	switch m.state {
	case StateClosed:
		m.mu.Unlock()
		return permit{}, nil

	case StateOpen:
		if now.Before(m.breakDeadline) {
			retryAfter := m.breakDeadline.Sub(now)
			m.mu.Unlock()
			return permit{}, &BrokenCircuitError{RetryAfter: retryAfter}
		}
		// Deadline passed: move to half-open and take the probe slot in
		// the same critical section so exactly one racing caller wins.
		m.enqueueLocked(KindHalfOpened, StateHalfOpen, m.window.snapshot(now), now, nil)
		m.state = StateHalfOpen
		m.probeInFlight = true
		m.mu.Unlock()
		m.flush()
		return permit{probe: true}, nil

	case StateHalfOpen:
		if m.probeInFlight {
			m.mu.Unlock()
			return permit{}, &BrokenCircuitError{}
		}
		m.probeInFlight = true
		m.mu.Unlock()
		return permit{probe: true}, nil

	default: // StateIsolated
		m.mu.Unlock()
		return permit{}, ErrCircuitIsolated
	}
}

// recordOutcome feeds a completed, executed call back into the circuit.
// Rejected calls never reach here, so they never appear in the window.
func (m *machine) recordOutcome(p permit, verdict Verdict, outcome error) {
	if verdict == VerdictIgnore {
		m.releaseProbe(p)
		return
	}

	now := m.clock.Now()

	m.mu.Lock()
	m.window.record(verdict == VerdictSuccess, now)

	switch m.state {
	case StateClosed:
		snap := m.window.snapshot(now)
		if snap.Total >= m.minThroughput && snap.FailureRatio() > m.failureRatio {
			m.openLocked(now, snap, outcome)
		}

	case StateHalfOpen:
		if !p.probe {
			// A call admitted under an earlier closed period finished
			// while the probe is pending. Its outcome stays in the window
			// but only the probe resolves the half-open state.
			break
		}
		m.probeInFlight = false
		if verdict == VerdictSuccess {
			m.window.reset()
			m.consecutiveOpens = 0
			m.enqueueLocked(KindClosed, StateClosed, Snapshot{}, now, outcome)
			m.state = StateClosed
		} else {
			// Recompute the deadline through the policy at this instant,
			// not the one from the previous open entry.
			m.openLocked(now, m.window.snapshot(now), outcome)
		}

	case StateOpen, StateIsolated:
		// The circuit moved on while this call was executing. The outcome
		// is recorded; no transition is evaluated.
	}
	m.mu.Unlock()
	m.flush()
}

// releaseProbe frees the probe slot after an ignored probe outcome. The
// circuit stays half-open, so the next admitted caller becomes the probe.
func (m *machine) releaseProbe(p permit) {
	if !p.probe {
		return
	}
	m.mu.Lock()
	if m.state == StateHalfOpen {
		m.probeInFlight = false
	}
	m.mu.Unlock()
}

// isolate forces the isolated state, pre-empting any pending probe
// resolution. Idempotent: an already-isolated circuit emits nothing.
func (m *machine) isolate() {
	now := m.clock.Now()

	m.mu.Lock()
	if m.state == StateIsolated {
		m.mu.Unlock()
		return
	}
	m.probeInFlight = false
	m.enqueueLocked(KindOpened, StateIsolated, m.window.snapshot(now), now, nil)
	m.state = StateIsolated
	m.mu.Unlock()
	m.flush()
}

// reset clears the manual override and forces the closed state, emptying
// the window so stale failure history cannot immediately reopen the
// circuit. Idempotent: an already-closed circuit emits nothing.
func (m *machine) reset() {
	now := m.clock.Now()

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	m.window.reset()
	m.probeInFlight = false
	m.consecutiveOpens = 0
	m.breakDeadline = time.Time{}
	m.enqueueLocked(KindClosed, StateClosed, Snapshot{}, now, nil)
	m.state = StateClosed
	m.mu.Unlock()
	m.flush()
}

// currentState returns the stored state. Lazy transitions, including
// Open -> HalfOpen, happen only on admission checks, so an open circuit
// reports open until a caller probes it.
func (m *machine) currentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// metrics returns a consistent statistics snapshot.
func (m *machine) metrics() BreakerMetrics {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.window.snapshot(now)
	return BreakerMetrics{
		State:            m.state,
		Total:            snap.Total,
		Failures:         snap.Failures,
		FailureRatio:     snap.FailureRatio(),
		ConsecutiveOpens: m.consecutiveOpens,
		BreakDeadline:    m.breakDeadline,
	}
}

// openLocked enters the open state: bump the consecutive-open count,
// compute the cool-down through the policy exactly once, and set the
// deadline. Must be called with the mutex held.
func (m *machine) openLocked(now time.Time, snap Snapshot, outcome error) {
	m.consecutiveOpens++
	sig := BreakSignal{
		Failures:         snap.Failures,
		Throughput:       snap.Total,
		ConsecutiveOpens: m.consecutiveOpens,
	}
	m.breakDeadline = now.Add(m.policy.duration(sig, m.logger))
	m.probeInFlight = false
	m.enqueueLocked(KindOpened, StateOpen, snap, now, outcome)
	m.state = StateOpen
}

// enqueueLocked sequences a transition event. Must be called with the mutex
// held, before m.state is overwritten, so From captures the prior state.
func (m *machine) enqueueLocked(kind EventKind, to State, snap Snapshot, now time.Time, outcome error) {
	m.pending = append(m.pending, Event{
		Kind:      kind,
		From:      m.state,
		To:        to,
		Snapshot:  snap,
		Timestamp: now,
		Operation: m.name,
		Outcome:   outcome,
	})
}

// flush drains the pending event queue. Only one goroutine drains at a
// time; the drain loop releases the mutex around every observer call, and
// the draining flag makes reentrant flushes (an observer calling Isolate or
// Reset) no-ops whose events the active drainer picks up.
func (m *machine) flush() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.pending) > 0 {
		event := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()
		m.notifier.emit(event)
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}
