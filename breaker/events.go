package breaker

import (
	"sync"
	"time"
)

// EventKind identifies a transition event.
type EventKind int

const (
	// KindClosed signals the circuit returned to normal operation.
	// Informational severity.
	KindClosed EventKind = iota
	// KindOpened signals the circuit started rejecting calls, whether
	// statistically or by manual isolation. Error severity.
	KindOpened
	// KindHalfOpened signals the circuit admitted a recovery probe.
	// Warning severity.
	KindHalfOpened
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindOpened:
		return "opened"
	case KindHalfOpened:
		return "half-opened"
	default:
		return "unknown"
	}
}

// Event describes one actual state transition. Exactly one event is emitted
// per transition; manual calls that find the circuit already in the target
// state emit nothing.
type Event struct {
	// Kind is the telemetry classification of the transition.
	Kind EventKind

	// From and To are the states on either side of the transition.
	From State
	To   State

	// Snapshot is the window view at the moment of the transition.
	Snapshot Snapshot

	// Timestamp is when the transition happened.
	Timestamp time.Time

	// Operation is the breaker's configured name.
	Operation string

	// Outcome is the classified outcome that drove the transition. Nil for
	// half-open admissions and manual transitions.
	Outcome error
}

// StateObserver receives transition events. Observers are invoked
// synchronously and in transition order, with no breaker lock held, so an
// observer may call back into the breaker. A panicking observer is isolated
// and logged; it never corrupts circuit state.
type StateObserver interface {
	OnTransition(event Event)
}

// StateObserverFunc adapts a function to the StateObserver interface.
type StateObserverFunc func(event Event)

// OnTransition calls f.
func (f StateObserverFunc) OnTransition(event Event) { f(event) }

// notifier fans one event out to every subscribed observer.
type notifier struct {
	logger Logger

	mu        sync.RWMutex
	observers []StateObserver
}

func newNotifier(logger Logger) *notifier {
	return &notifier{logger: logger}
}

func (n *notifier) subscribe(obs StateObserver) {
	if obs == nil {
		return
	}
	n.mu.Lock()
	n.observers = append(n.observers, obs)
	n.mu.Unlock()
}

func (n *notifier) emit(event Event) {
	n.mu.RLock()
	observers := make([]StateObserver, len(n.observers))
	copy(observers, n.observers)
	n.mu.RUnlock()

	for _, obs := range observers {
		n.notify(obs, event)
	}
}

// notify delivers one event to one observer, containing any panic.
func (n *notifier) notify(obs StateObserver, event Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorf("breaker: state observer panic on %s -> %s: %v", event.From, event.To, r)
		}
	}()
	obs.OnTransition(event)
}

// callbackObserver routes events to the per-kind callbacks supplied in
// Config.
type callbackObserver struct {
	onClosed     func(Event)
	onOpened     func(Event)
	onHalfOpened func(Event)
}

func (c callbackObserver) OnTransition(event Event) {
	switch event.Kind {
	case KindClosed:
		if c.onClosed != nil {
			c.onClosed(event)
		}
	case KindOpened:
		if c.onOpened != nil {
			c.onOpened(event)
		}
	case KindHalfOpened:
		if c.onHalfOpened != nil {
			c.onHalfOpened(event)
		}
	}
}
