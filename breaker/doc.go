// Package breaker provides a circuit-breaker admission-control engine.
//
// A Breaker guards one logical resource. Outcomes of executed calls are
// classified and aggregated over a rolling sampling window; when the window
// holds enough samples and the failure ratio crosses the configured
// threshold, the circuit opens and rejects calls for a cool-down period.
// The first caller after the cool-down is admitted as a single recovery
// probe: its success closes the circuit with a fresh window, its failure
// reopens it with a newly computed cool-down. A manual override can isolate
// the circuit unconditionally, taking precedence over the statistics until
// it is reset.
//
// # States
//
//   - Closed: calls flow through, outcomes are sampled.
//   - Open: calls are rejected with a retry hint until the break deadline.
//   - HalfOpen: exactly one probe call is admitted; all others are rejected.
//   - Isolated: manual override; every call is rejected until Reset.
//
// There is no background goroutine: all transitions, including the move
// from open to half-open, happen lazily on whichever caller's admission
// check triggers them.
//
// # Usage
//
//	cb, err := breaker.New(breaker.Config{
//	    Name:              "billing-api",
//	    FailureRatio:      0.5,
//	    MinimumThroughput: 10,
//	    SamplingDuration:  30 * time.Second,
//	    BreakDuration:     5 * time.Second,
//	    Classifier:        breaker.DefaultClassifier,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = cb.Execute(ctx, func(ctx context.Context) error {
//	    return callBillingAPI(ctx)
//	})
//	if errors.Is(err, breaker.ErrCircuitOpen) {
//	    // rejected without invoking the call
//	}
//
// The cool-down may also be computed per open transition:
//
//	cfg.BreakDurationFunc = func(sig breaker.BreakSignal) (time.Duration, error) {
//	    return time.Duration(sig.ConsecutiveOpens) * time.Second, nil
//	}
//
// Transition events are observable through Config callbacks or Subscribe;
// see the observe package for OpenTelemetry wiring.
package breaker
