package breaker

import "sync"

// Manual is a shared override handle that drives one or more breakers. It
// remembers its position, so a breaker bound to an already-isolated handle
// starts isolated.
//
// The handle never holds its own lock while touching a breaker, so
// observers reacting to the resulting transitions may call back into the
// handle without deadlocking.
type Manual struct {
	mu       sync.Mutex
	isolated bool
	breakers []*Breaker
}

// NewManual creates an override handle. Bind breakers through
// Config.Manual.
func NewManual() *Manual {
	return &Manual{}
}

// Isolate forces every bound breaker into the isolated state.
func (m *Manual) Isolate() {
	m.mu.Lock()
	m.isolated = true
	targets := m.snapshot()
	m.mu.Unlock()

	for _, b := range targets {
		b.Isolate()
	}
}

// Reset clears the override and forces every bound breaker closed.
func (m *Manual) Reset() {
	m.mu.Lock()
	m.isolated = false
	targets := m.snapshot()
	m.mu.Unlock()

	for _, b := range targets {
		b.Reset()
	}
}

// Isolated reports whether the handle currently holds breakers isolated.
func (m *Manual) Isolated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isolated
}

func (m *Manual) bind(b *Breaker) {
	m.mu.Lock()
	m.breakers = append(m.breakers, b)
	isolated := m.isolated
	m.mu.Unlock()

	if isolated {
		b.Isolate()
	}
}

// snapshot copies the bound breaker list. Must be called with the mutex
// held.
func (m *Manual) snapshot() []*Breaker {
	targets := make([]*Breaker, len(m.breakers))
	copy(targets, m.breakers)
	return targets
}
