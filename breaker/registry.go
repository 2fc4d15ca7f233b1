package breaker

import "sync"

// Registry holds one breaker per logical resource. Circuits are
// process-local and per-resource; the registry is the conventional owner
// when many resources are guarded.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*Breaker)}
}

// GetOrCreate returns the breaker registered under name, creating it from
// cfg on first use. The registered name overrides cfg.Name. Concurrent
// callers racing the first use observe the same instance.
func (r *Registry) GetOrCreate(name string, cfg Config) (*Breaker, error) {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if b, ok = r.breakers[name]; ok {
		return b, nil
	}

	cfg.Name = name
	b, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r.breakers[name] = b
	return b, nil
}

// Get returns the breaker registered under name, if any.
func (r *Registry) Get(name string) (*Breaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[name]
	return b, ok
}

// Names returns the names of all registered breakers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	return names
}

// Range calls fn for each registered breaker until fn returns false.
func (r *Registry) Range(fn func(name string, b *Breaker) bool) {
	r.mu.RLock()
	breakers := make(map[string]*Breaker, len(r.breakers))
	for name, b := range r.breakers {
		breakers[name] = b
	}
	r.mu.RUnlock()

	for name, b := range breakers {
		if !fn(name, b) {
			return
		}
	}
}
