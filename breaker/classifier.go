package breaker

import (
	"context"
	"errors"
)

// Verdict is the classification of a completed call's outcome.
type Verdict int

const (
	// VerdictSuccess counts the call as a success in the sampling window.
	VerdictSuccess Verdict = iota
	// VerdictFailure counts the call as a failure in the sampling window.
	VerdictFailure
	// VerdictIgnore passes the outcome through without touching the
	// window or the circuit state.
	VerdictIgnore
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictFailure:
		return "failure"
	case VerdictIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// Classifier decides how a completed call's result feeds the circuit.
// It receives the error returned by the wrapped operation (nil on success)
// and returns a Verdict. Classifiers run outside the breaker's critical
// section and must be safe for concurrent use.
type Classifier func(err error) Verdict

// DefaultClassifier treats a nil error as success, context cancellation
// and deadline expiry as ignored, and everything else as failure.
func DefaultClassifier(err error) Verdict {
	switch {
	case err == nil:
		return VerdictSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return VerdictIgnore
	default:
		return VerdictFailure
	}
}

// classify runs the classifier, treating a panic as an ignored outcome so a
// faulty classifier can never corrupt the circuit.
func classify(c Classifier, err error, logger Logger) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("breaker: classifier panic: %v", r)
			v = VerdictIgnore
		}
	}()
	return c(err)
}
