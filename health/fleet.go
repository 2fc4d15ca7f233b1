package health

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// FleetConfig configures a Fleet.
type FleetConfig struct {
	// Timeout bounds one report; probes still running when it expires come
	// back unhealthy with ErrProbeTimeout. Default: 10 seconds.
	Timeout time.Duration
}

// Fleet aggregates the health of every breaker in a registry, plus any
// auxiliary probes, into one report.
//
// Breakers are read live from the watched registry on every report, so
// circuits created after Watch are picked up automatically. Probes run in
// parallel under the fleet timeout; breaker reads are counter lookups and
// run inline.
type Fleet struct {
	timeout time.Duration

	mu       sync.RWMutex
	registry *breaker.Registry
	probes   map[string]Checker
	order    []string // probe registration order
}

// NewFleet creates a fleet.
func NewFleet(config ...FleetConfig) *Fleet {
	timeout := 10 * time.Second
	if len(config) > 0 && config[0].Timeout > 0 {
		timeout = config[0].Timeout
	}
	return &Fleet{
		timeout: timeout,
		probes:  make(map[string]Checker),
	}
}

// Watch points the fleet at a breaker registry. Every subsequent report
// reflects the registry's contents at report time.
func (f *Fleet) Watch(reg *breaker.Registry) {
	f.mu.Lock()
	f.registry = reg
	f.mu.Unlock()
}

// Register adds an auxiliary probe under the given name. Re-registering a
// name replaces the probe.
func (f *Fleet) Register(name string, c Checker) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.probes[name]; !exists {
		f.order = append(f.order, name)
	}
	f.probes[name] = c
}

// Names returns every check the next report will run: registered probes in
// registration order, then the watched breakers as breaker:<name>, sorted.
func (f *Fleet) Names() []string {
	f.mu.RLock()
	names := make([]string, len(f.order))
	copy(names, f.order)
	reg := f.registry
	f.mu.RUnlock()

	if reg != nil {
		cbNames := reg.Names()
		sort.Strings(cbNames)
		for _, n := range cbNames {
			names = append(names, "breaker:"+n)
		}
	}
	return names
}

// Check runs a single named check: a registered probe, or breaker:<name>
// from the watched registry.
func (f *Fleet) Check(ctx context.Context, name string) (Result, error) {
	f.mu.RLock()
	probe, ok := f.probes[name]
	reg := f.registry
	f.mu.RUnlock()

	if ok {
		ctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()
		return runProbe(ctx, probe), nil
	}

	if reg != nil {
		if cbName, found := strings.CutPrefix(name, "breaker:"); found {
			if cb, ok := reg.Get(cbName); ok {
				return checkBreaker(ctx, cb), nil
			}
		}
	}
	return Result{}, ErrUnknownCheck
}

// Report is one consistent pass over the fleet.
type Report struct {
	// Status is the worst verdict in Results; an empty report is healthy.
	Status Status

	// Results holds one entry per check. Watched breakers appear under
	// breaker:<name>.
	Results map[string]Result
}

// Report checks everything the fleet knows about. The report's status is
// the worst individual verdict, so one open circuit turns the whole fleet
// unhealthy.
func (f *Fleet) Report(ctx context.Context) Report {
	f.mu.RLock()
	reg := f.registry
	probes := make(map[string]Checker, len(f.probes))
	for name, p := range f.probes {
		probes[name] = p
	}
	f.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	results := make(map[string]Result, len(probes))
	var rmu sync.Mutex
	var wg sync.WaitGroup

	for name, probe := range probes {
		wg.Add(1)
		go func(name string, probe Checker) {
			defer wg.Done()
			r := runProbe(ctx, probe)
			rmu.Lock()
			results[name] = r
			rmu.Unlock()
		}(name, probe)
	}

	if reg != nil {
		reg.Range(func(name string, cb *breaker.Breaker) bool {
			r := checkBreaker(ctx, cb)
			rmu.Lock()
			results["breaker:"+name] = r
			rmu.Unlock()
			return true
		})
	}
	wg.Wait()

	report := Report{Status: StatusHealthy, Results: results}
	for _, r := range results {
		if r.Status > report.Status {
			report.Status = r.Status
		}
	}
	return report
}

// runProbe guards one probe with the context deadline, stamping its
// duration. A probe that outruns the deadline keeps running in its
// goroutine but its verdict is discarded.
func runProbe(ctx context.Context, probe Checker) Result {
	start := time.Now()
	resultCh := make(chan Result, 1)

	go func() {
		r := probe.Check(ctx)
		r.Duration = time.Since(start)
		if r.CheckedAt.IsZero() {
			r.CheckedAt = start
		}
		resultCh <- r
	}()

	select {
	case r := <-resultCh:
		return r
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "probe timed out",
			Err:       ErrProbeTimeout,
			Duration:  time.Since(start),
			CheckedAt: start,
		}
	}
}
