package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
	"github.com/jonwraymond/circuitkit/health"
)

func exampleBreakerConfig() breaker.Config {
	return breaker.Config{
		FailureRatio:      0.5,
		MinimumThroughput: 10,
		SamplingDuration:  10 * time.Second,
		BreakDuration:     30 * time.Second,
		Classifier:        breaker.DefaultClassifier,
	}
}

func ExampleNewBreakerChecker() {
	cfg := exampleBreakerConfig()
	cfg.Name = "billing"
	cb, _ := breaker.New(cfg)

	checker := health.NewBreakerChecker(cb)

	ctx := context.Background()
	result := checker.Check(ctx)

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	fmt.Println("Circuit state:", result.Metrics.State)
	// Output:
	// Checker name: breaker:billing
	// Status: healthy
	// Message: circuit closed
	// Circuit state: closed
}

func ExampleNewBreakerChecker_isolated() {
	cfg := exampleBreakerConfig()
	cfg.Name = "billing"
	cb, _ := breaker.New(cfg)

	// An operator takes the resource out of rotation.
	cb.Isolate()

	checker := health.NewBreakerChecker(cb)
	result := checker.Check(context.Background())

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	fmt.Println("Is isolation error:", errors.Is(result.Err, breaker.ErrCircuitIsolated))
	// Output:
	// Status: unhealthy
	// Message: circuit isolated by operator
	// Is isolation error: true
}

func ExampleStatusOf() {
	fmt.Println(health.StatusOf(breaker.StateClosed))
	fmt.Println(health.StatusOf(breaker.StateHalfOpen))
	fmt.Println(health.StatusOf(breaker.StateOpen))
	fmt.Println(health.StatusOf(breaker.StateIsolated))
	// Output:
	// healthy
	// degraded
	// unhealthy
	// unhealthy
}

func ExampleNewCheckerFunc() {
	// Create a simple database ping checker
	dbChecker := health.NewCheckerFunc("database", func(ctx context.Context) health.Result {
		// Simulate a successful ping
		return health.Healthy("database connected")
	})

	ctx := context.Background()
	result := dbChecker.Check(ctx)

	fmt.Println("Checker name:", dbChecker.Name())
	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Checker name: database
	// Status: healthy
	// Message: database connected
}

func ExampleHealthy() {
	result := health.Healthy("all systems operational")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: healthy
	// Message: all systems operational
}

func ExampleDegraded() {
	result := health.Degraded("high latency detected")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: degraded
	// Message: high latency detected
}

func ExampleUnhealthy() {
	err := errors.New("connection refused")
	result := health.Unhealthy("database unreachable", err)

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	fmt.Println("Has error:", result.Err != nil)
	// Output:
	// Status: unhealthy
	// Message: database unreachable
	// Has error: true
}

func ExampleNewFleet() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())
	_, _ = reg.GetOrCreate("search", exampleBreakerConfig())

	fleet := health.NewFleet()
	fleet.Watch(reg)
	fleet.Register("db-ping", health.NewCheckerFunc("db-ping", func(ctx context.Context) health.Result {
		return health.Healthy("pong")
	}))

	fmt.Println("Checks:", fleet.Names())
	// Output:
	// Checks: [db-ping breaker:billing breaker:search]
}

func ExampleFleet_Report() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())
	billing, _ := reg.Get("billing")

	fleet := health.NewFleet()
	fleet.Watch(reg)

	report := fleet.Report(context.Background())
	fmt.Println("Before isolation:", report.Status.String())

	billing.Isolate()

	report = fleet.Report(context.Background())
	fmt.Println("After isolation:", report.Status.String())
	fmt.Println("billing:", report.Results["breaker:billing"].Message)
	// Output:
	// Before isolation: healthy
	// After isolation: unhealthy
	// billing: circuit isolated by operator
}

func ExampleFleet_Check() {
	fleet := health.NewFleet()
	fleet.Register("db-ping", health.NewCheckerFunc("db-ping", func(ctx context.Context) health.Result {
		return health.Healthy("pong")
	}))

	ctx := context.Background()

	result, err := fleet.Check(ctx, "db-ping")
	if err == nil {
		fmt.Println("Status:", result.Status.String())
		fmt.Println("Message:", result.Message)
	}

	_, err = fleet.Check(ctx, "unknown")
	fmt.Println("Unknown check error:", errors.Is(err, health.ErrUnknownCheck))
	// Output:
	// Status: healthy
	// Message: pong
	// Unknown check error: true
}

func ExampleStatus_String() {
	statuses := []health.Status{
		health.StatusHealthy,
		health.StatusDegraded,
		health.StatusUnhealthy,
	}

	for _, s := range statuses {
		fmt.Println(s.String())
	}
	// Output:
	// healthy
	// degraded
	// unhealthy
}

func ExampleLivenessHandler() {
	handler := health.LivenessHandler()

	// Simulate HTTP request
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	fmt.Println("Status code:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// Status code: 200
	// Body: OK
}

func ExampleReadinessHandler() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())

	fleet := health.NewFleet()
	fleet.Watch(reg)

	handler := health.ReadinessHandler(fleet)

	req := httptest.NewRequest("GET", "/readyz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	fmt.Println("Status code:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// Status code: 200
	// Body: OK
}

func ExampleDetailedHandler() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())

	fleet := health.NewFleet()
	fleet.Watch(reg)

	handler := health.DetailedHandler(fleet)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var response health.HealthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &response)

	check := response.Checks["breaker:billing"]
	fmt.Println("Status code:", rec.Code)
	fmt.Println("Overall status:", response.Status)
	fmt.Println("billing circuit:", check.Breaker.State)
	// Output:
	// Status code: 200
	// Overall status: healthy
	// billing circuit: closed
}

func ExampleStatesHandler() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())

	handler := health.StatesHandler(reg)

	req := httptest.NewRequest("GET", "/breakers", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var states map[string]health.BreakerState
	_ = json.Unmarshal(rec.Body.Bytes(), &states)

	fmt.Println("Status code:", rec.Code)
	fmt.Println("billing state:", states["billing"].State)
	// Output:
	// Status code: 200
	// billing state: closed
}

func ExampleRegisterHandlers() {
	reg := breaker.NewRegistry()
	_, _ = reg.GetOrCreate("billing", exampleBreakerConfig())

	fleet := health.NewFleet()
	fleet.Watch(reg)

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, fleet)

	// Test that handlers are registered
	endpoints := []string{"/healthz", "/readyz", "/health"}
	for _, ep := range endpoints {
		req := httptest.NewRequest("GET", ep, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		fmt.Printf("%s: %d\n", ep, rec.Code)
	}
	// Output:
	// /healthz: 200
	// /readyz: 200
	// /health: 200
}
