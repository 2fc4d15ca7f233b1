package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jonwraymond/circuitkit/breaker"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes, driven by
// a fleet report. Any open or isolated circuit turns the fleet unhealthy.
func ReadinessHandler(f *Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := f.Report(ctx)

		w.Header().Set("Content-Type", "text/plain")

		switch report.Status {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// HealthResponse is the JSON shape of a fleet report.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON shape of a single check result.
type CheckResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration string        `json:"duration,omitempty"`
	Breaker  *BreakerState `json:"breaker,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BreakerState is the JSON shape of one circuit's live statistics.
type BreakerState struct {
	State            string  `json:"state"`
	Throughput       uint64  `json:"throughput"`
	Failures         uint64  `json:"failures"`
	FailureRatio     float64 `json:"failure_ratio"`
	ConsecutiveOpens int     `json:"consecutive_opens"`
	BreakDeadline    string  `json:"break_deadline,omitempty"`
}

func newBreakerState(m breaker.BreakerMetrics) *BreakerState {
	s := &BreakerState{
		State:            m.State.String(),
		Throughput:       m.Total,
		Failures:         m.Failures,
		FailureRatio:     m.FailureRatio,
		ConsecutiveOpens: m.ConsecutiveOpens,
	}
	if m.State == breaker.StateOpen && !m.BreakDeadline.IsZero() {
		s.BreakDeadline = m.BreakDeadline.UTC().Format(time.RFC3339)
	}
	return s
}

func newCheckResponse(result Result) CheckResponse {
	check := CheckResponse{
		Status:  result.Status.String(),
		Message: result.Message,
	}
	if result.Duration > 0 {
		check.Duration = result.Duration.String()
	}
	if result.Metrics != nil {
		check.Breaker = newBreakerState(*result.Metrics)
	}
	if result.Err != nil {
		check.Error = result.Err.Error()
	}
	return check
}

// DetailedHandler returns an HTTP handler serving the full fleet report,
// circuit statistics included.
func DetailedHandler(f *Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		report := f.Report(ctx)

		response := HealthResponse{
			Status:    report.Status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(report.Results)),
		}
		for name, result := range report.Results {
			response.Checks[name] = newCheckResponse(result)
		}

		w.Header().Set("Content-Type", "application/json")

		switch report.Status {
		case StatusHealthy, StatusDegraded:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	}
}

// SingleCheckHandler returns an HTTP handler for one named check, either a
// registered probe or breaker:<name>.
func SingleCheckHandler(f *Fleet, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := f.Check(ctx, name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			if errors.Is(err, ErrUnknownCheck) {
				w.WriteHeader(http.StatusNotFound)
			} else {
				w.WriteHeader(http.StatusInternalServerError)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")

		switch result.Status {
		case StatusHealthy, StatusDegraded:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(newCheckResponse(result))
	}
}

// StatesHandler returns an HTTP handler that dumps the raw state of every
// breaker in the registry. Unlike the readiness handlers this does not run
// probes; it reads live counters, so it is cheap enough for dashboards to
// poll.
func StatesHandler(reg *breaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states := make(map[string]BreakerState)
		reg.Range(func(name string, cb *breaker.Breaker) bool {
			states[name] = *newBreakerState(cb.Metrics())
			return true
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(states)
	}
}

// RegisterHandlers registers the health endpoints on the given mux.
func RegisterHandlers(mux *http.ServeMux, f *Fleet) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(f))
	mux.HandleFunc("/health", DetailedHandler(f))
}
