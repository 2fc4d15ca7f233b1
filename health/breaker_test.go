package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// newTestBreaker creates a breaker that trips after two failures and stays
// open long enough for the test to observe the state.
func newTestBreaker(t testing.TB, name string) *breaker.Breaker {
	t.Helper()
	cb, err := breaker.New(breaker.Config{
		Name:              name,
		FailureRatio:      0.5,
		MinimumThroughput: 2,
		SamplingDuration:  2 * time.Second,
		BreakDuration:     time.Hour,
		Classifier:        breaker.DefaultClassifier,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return cb
}

// newTestRegistry creates a registry with one fresh breaker per name.
func newTestRegistry(t testing.TB, names ...string) *breaker.Registry {
	t.Helper()
	reg := breaker.NewRegistry()
	for _, name := range names {
		_, err := reg.GetOrCreate(name, breaker.Config{
			FailureRatio:      0.5,
			MinimumThroughput: 2,
			SamplingDuration:  2 * time.Second,
			BreakDuration:     time.Hour,
			Classifier:        breaker.DefaultClassifier,
		})
		if err != nil {
			t.Fatalf("GetOrCreate(%q) error = %v", name, err)
		}
	}
	return reg
}

// tripBreaker drives the named breaker into the open state.
func tripBreaker(t testing.TB, reg *breaker.Registry, name string) {
	t.Helper()
	cb, ok := reg.Get(name)
	if !ok {
		t.Fatalf("breaker %q not in registry", name)
	}
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}
	if cb.State() != breaker.StateOpen {
		t.Fatalf("State() = %v, want %v", cb.State(), breaker.StateOpen)
	}
}

func TestBreakerChecker_Name(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	if checker.Name() != "breaker:billing" {
		t.Errorf("Name() = %v, want 'breaker:billing'", checker.Name())
	}
}

func TestBreakerChecker_Closed(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})

	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusHealthy)
	}
	if result.Message != "circuit closed" {
		t.Errorf("Message = %v, want 'circuit closed'", result.Message)
	}
	if result.Metrics == nil {
		t.Fatal("Metrics should carry the circuit snapshot")
	}
	if result.Metrics.State != breaker.StateClosed {
		t.Errorf("Metrics.State = %v, want closed", result.Metrics.State)
	}
	if result.Metrics.Total != 1 {
		t.Errorf("Metrics.Total = %d, want 1", result.Metrics.Total)
	}
}

func TestBreakerChecker_Open(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}
	if !errors.Is(result.Err, breaker.ErrCircuitOpen) {
		t.Errorf("Err = %v, want ErrCircuitOpen", result.Err)
	}
	if !strings.Contains(result.Message, "circuit open") {
		t.Errorf("Message = %v, want it to mention 'circuit open'", result.Message)
	}
	if result.Metrics == nil {
		t.Fatal("Metrics should carry the circuit snapshot")
	}
	if result.Metrics.ConsecutiveOpens != 1 {
		t.Errorf("Metrics.ConsecutiveOpens = %d, want 1", result.Metrics.ConsecutiveOpens)
	}
	if result.Metrics.BreakDeadline.IsZero() {
		t.Error("Metrics.BreakDeadline should be set for an open circuit")
	}
}

func TestBreakerChecker_HalfOpen(t *testing.T) {
	cb, err := breaker.New(breaker.Config{
		Name:              "billing",
		FailureRatio:      0.5,
		MinimumThroughput: 2,
		SamplingDuration:  2 * time.Second,
		BreakDuration:     30 * time.Millisecond,
		Classifier:        breaker.DefaultClassifier,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	checker := NewBreakerChecker(cb)

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}

	time.Sleep(60 * time.Millisecond)

	// Hold the probe slot open so the circuit stays half-open while the
	// checker looks at it.
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	result := checker.Check(context.Background())

	close(release)
	<-done

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want %v", result.Status, StatusDegraded)
	}
	if result.Message != "circuit half-open, probing recovery" {
		t.Errorf("Message = %v, want half-open message", result.Message)
	}
	if result.Metrics == nil || result.Metrics.State != breaker.StateHalfOpen {
		t.Errorf("Metrics = %+v, want half-open state", result.Metrics)
	}
}

func TestBreakerChecker_Isolated(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	cb.Isolate()

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}
	if !errors.Is(result.Err, breaker.ErrCircuitIsolated) {
		t.Errorf("Err = %v, want ErrCircuitIsolated", result.Err)
	}
	if result.Message != "circuit isolated by operator" {
		t.Errorf("Message = %v, want 'circuit isolated by operator'", result.Message)
	}
}

func TestBreakerChecker_ResetRecovers(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	cb.Isolate()
	cb.Reset()

	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status after Reset = %v, want %v", result.Status, StatusHealthy)
	}
}

func TestBreakerChecker_CancelledContext(t *testing.T) {
	cb := newTestBreaker(t, "billing")
	checker := NewBreakerChecker(cb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", result.Err)
	}
}
