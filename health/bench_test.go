package health

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

func newBenchBreaker(b *testing.B, name string) *breaker.Breaker {
	b.Helper()
	cb, err := breaker.New(breaker.Config{
		Name:              name,
		FailureRatio:      0.5,
		MinimumThroughput: 10,
		SamplingDuration:  10 * time.Second,
		BreakDuration:     30 * time.Second,
		Classifier:        breaker.DefaultClassifier,
	})
	if err != nil {
		b.Fatalf("New() error = %v", err)
	}
	return cb
}

func newBenchRegistry(b *testing.B, count int) *breaker.Registry {
	b.Helper()
	reg := breaker.NewRegistry()
	cfg := breaker.Config{
		FailureRatio:      0.5,
		MinimumThroughput: 10,
		SamplingDuration:  10 * time.Second,
		BreakDuration:     30 * time.Second,
		Classifier:        breaker.DefaultClassifier,
	}
	for i := 0; i < count; i++ {
		if _, err := reg.GetOrCreate(fmt.Sprintf("cb%d", i), cfg); err != nil {
			b.Fatalf("GetOrCreate() error = %v", err)
		}
	}
	return reg
}

// BenchmarkChecker_Check measures single probe performance.
func BenchmarkChecker_Check(b *testing.B) {
	checker := NewCheckerFunc("bench", func(ctx context.Context) Result {
		return Healthy("ok")
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = checker.Check(ctx)
	}
}

// BenchmarkBreakerChecker_Check measures breaker checker performance.
func BenchmarkBreakerChecker_Check(b *testing.B) {
	checker := NewBreakerChecker(newBenchBreaker(b, "bench"))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = checker.Check(ctx)
	}
}

// BenchmarkFleet_Report_RegistryOnly measures a pure counter-read report.
func BenchmarkFleet_Report_RegistryOnly(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 10))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Report(ctx)
	}
}

// BenchmarkFleet_Report_Mixed measures probes plus breakers.
func BenchmarkFleet_Report_Mixed(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 5))
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("probe%d", i)
		f.Register(name, NewCheckerFunc(name, func(ctx context.Context) Result {
			return Healthy("ok")
		}))
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Report(ctx)
	}
}

// BenchmarkFleet_Report_VaryingBreakers measures scaling with fleet size.
func BenchmarkFleet_Report_VaryingBreakers(b *testing.B) {
	sizes := []int{1, 5, 10, 20}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("breakers=%d", size), func(b *testing.B) {
			f := NewFleet()
			f.Watch(newBenchRegistry(b, size))
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = f.Report(ctx)
			}
		})
	}
}

// BenchmarkFleet_Register measures registration overhead.
func BenchmarkFleet_Register(b *testing.B) {
	checker := NewCheckerFunc("bench", func(ctx context.Context) Result {
		return Healthy("ok")
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f := NewFleet()
		f.Register("check", checker)
	}
}

// BenchmarkFleet_Names measures name listing.
func BenchmarkFleet_Names(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 10))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Names()
	}
}

// BenchmarkLivenessHandler_ServeHTTP measures liveness handler overhead.
func BenchmarkLivenessHandler_ServeHTTP(b *testing.B) {
	handler := LivenessHandler()
	req := httptest.NewRequest("GET", "/healthz", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// BenchmarkReadinessHandler_ServeHTTP measures readiness handler overhead.
func BenchmarkReadinessHandler_ServeHTTP(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 5))

	handler := ReadinessHandler(f)
	req := httptest.NewRequest("GET", "/readyz", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// BenchmarkDetailedHandler_ServeHTTP measures detailed handler overhead.
func BenchmarkDetailedHandler_ServeHTTP(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 3))

	handler := DetailedHandler(f)
	req := httptest.NewRequest("GET", "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// BenchmarkStatesHandler_ServeHTTP measures breaker state dump overhead.
func BenchmarkStatesHandler_ServeHTTP(b *testing.B) {
	reg := newBenchRegistry(b, 5)

	handler := StatesHandler(reg)
	req := httptest.NewRequest("GET", "/breakers", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// BenchmarkHealthy measures result creation.
func BenchmarkHealthy(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Healthy("message")
	}
}

// BenchmarkStatus_String measures status string conversion.
func BenchmarkStatus_String(b *testing.B) {
	statuses := []Status{StatusHealthy, StatusDegraded, StatusUnhealthy}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = statuses[i%3].String()
	}
}

// BenchmarkConcurrent_Fleet measures concurrent report generation.
func BenchmarkConcurrent_Fleet(b *testing.B) {
	f := NewFleet()
	f.Watch(newBenchRegistry(b, 5))
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = f.Report(ctx)
		}
	})
}
