package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultWindowBuckets is the bucket count used when Config.WindowBuckets
// is zero.
const DefaultWindowBuckets = 10

// Operation is a unit of work guarded by the breaker.
type Operation func(ctx context.Context) error

// Config configures a Breaker. Exactly one of BreakDuration and
// BreakDurationFunc must be set; everything marked optional may be left
// zero.
type Config struct {
	// Name identifies the breaker in transition events and telemetry.
	Name string

	// FailureRatio is the failure proportion above which the circuit
	// breaks, in (0, 1]. The circuit opens when the window's failure ratio
	// strictly exceeds this value.
	FailureRatio float64

	// MinimumThroughput is the sample count the window must hold before
	// the failure ratio is evaluated at all. Below it the circuit cannot
	// break regardless of the ratio. Must be positive.
	MinimumThroughput int

	// SamplingDuration is the rolling interval over which outcomes are
	// aggregated. Must be positive.
	SamplingDuration time.Duration

	// WindowBuckets is the number of sub-buckets the sampling duration is
	// divided into. At least 2 when set: the window evicts on bucket start
	// times, so a lone bucket would expire the instant time moves past it.
	// Optional; defaults to DefaultWindowBuckets.
	WindowBuckets int

	// BreakDuration is the fixed cool-down applied on every open
	// transition. Mutually exclusive with BreakDurationFunc.
	BreakDuration time.Duration

	// BreakDurationFunc computes the cool-down dynamically per open
	// transition. Mutually exclusive with BreakDuration.
	BreakDurationFunc BreakDurationFunc

	// Classifier decides how completed outcomes feed the circuit.
	// Required.
	Classifier Classifier

	// Clock overrides the time source. Optional; defaults to the system
	// clock.
	Clock Clock

	// Logger receives internal faults (policy failures, observer panics).
	// Optional; defaults to a no-op logger.
	Logger Logger

	// Manual binds this breaker to a shared manual override handle.
	// Optional.
	Manual *Manual

	// Observers are subscribed before the breaker is returned. Optional;
	// more can be added later with Subscribe.
	Observers []StateObserver

	// OnClosed, OnOpened and OnHalfOpened are per-kind transition
	// callbacks. Optional.
	OnClosed     func(Event)
	OnOpened     func(Event)
	OnHalfOpened func(Event)
}

// Validate checks the configuration, failing fast on malformed settings so
// they can never surface at call time.
func (c *Config) Validate() error {
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		return fmt.Errorf("breaker: failure ratio must be in (0, 1], got %v", c.FailureRatio)
	}
	if c.MinimumThroughput <= 0 {
		return fmt.Errorf("breaker: minimum throughput must be positive, got %d", c.MinimumThroughput)
	}
	if c.SamplingDuration <= 0 {
		return fmt.Errorf("breaker: sampling duration must be positive, got %v", c.SamplingDuration)
	}
	if c.WindowBuckets != 0 && c.WindowBuckets < 2 {
		return fmt.Errorf("breaker: window buckets must be at least 2, got %d", c.WindowBuckets)
	}
	if c.BreakDuration < 0 {
		return fmt.Errorf("breaker: break duration must not be negative, got %v", c.BreakDuration)
	}
	if c.BreakDuration > 0 && c.BreakDurationFunc != nil {
		return errors.New("breaker: break duration and break duration generator are mutually exclusive")
	}
	if c.BreakDuration == 0 && c.BreakDurationFunc == nil {
		return errors.New("breaker: either a break duration or a break duration generator is required")
	}
	if c.Classifier == nil {
		return errors.New("breaker: a classifier is required")
	}
	return nil
}

// Breaker is the execution gate of one circuit. It guards a single logical
// resource; distinct resources need distinct instances (see Registry).
type Breaker struct {
	name       string
	classifier Classifier
	logger     Logger
	machine    *machine
}

// New creates a Breaker from the configuration, validating it first.
func New(cfg Config) (*Breaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	buckets := cfg.WindowBuckets
	if buckets == 0 {
		buckets = DefaultWindowBuckets
	}

	b := &Breaker{
		name:       cfg.Name,
		classifier: cfg.Classifier,
		logger:     logger,
		machine: &machine{
			name:          cfg.Name,
			clock:         clock,
			policy:        breakPolicy{fixed: cfg.BreakDuration, fn: cfg.BreakDurationFunc},
			failureRatio:  cfg.FailureRatio,
			minThroughput: uint64(cfg.MinimumThroughput),
			logger:        logger,
			notifier:      newNotifier(logger),
			state:         StateClosed,
			window:        newSlidingWindow(cfg.SamplingDuration, buckets),
		},
	}

	if cfg.OnClosed != nil || cfg.OnOpened != nil || cfg.OnHalfOpened != nil {
		b.Subscribe(callbackObserver{
			onClosed:     cfg.OnClosed,
			onOpened:     cfg.OnOpened,
			onHalfOpened: cfg.OnHalfOpened,
		})
	}
	for _, obs := range cfg.Observers {
		b.Subscribe(obs)
	}
	if cfg.Manual != nil {
		cfg.Manual.bind(b)
	}

	return b, nil
}

// Execute runs the operation through the circuit. A rejected call returns
// the rejection immediately without invoking op and without touching the
// window. An admitted call's own failure is always returned verbatim; the
// breaker layers its own error only when it is the one blocking execution.
func (b *Breaker) Execute(ctx context.Context, op Operation) error {
	// A context canceled before the call starts records no outcome.
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := b.machine.admit()
	if err != nil {
		return err
	}

	err = op(ctx)
	b.machine.recordOutcome(p, classify(b.classifier, err, b.logger), err)
	return err
}

// Name returns the breaker's configured name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state. An open circuit past its break
// deadline still reports open: the half-open move happens lazily, on the
// next admission check.
func (b *Breaker) State() State {
	return b.machine.currentState()
}

// Isolate forces the circuit into the isolated state, rejecting every call
// until Reset. It pre-empts any in-flight probe resolution. Idempotent.
func (b *Breaker) Isolate() {
	b.machine.isolate()
}

// Reset clears any manual isolation and forces the circuit closed with an
// empty window. Idempotent.
func (b *Breaker) Reset() {
	b.machine.reset()
}

// Subscribe registers an observer for transition events.
func (b *Breaker) Subscribe(obs StateObserver) {
	b.machine.notifier.subscribe(obs)
}

// Metrics returns current circuit statistics.
func (b *Breaker) Metrics() BreakerMetrics {
	return b.machine.metrics()
}

// BreakerMetrics contains circuit statistics.
type BreakerMetrics struct {
	State            State
	Total            uint64
	Failures         uint64
	FailureRatio     float64
	ConsecutiveOpens int
	BreakDeadline    time.Time
}
