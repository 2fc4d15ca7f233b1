// Package observe provides observability primitives for circuit breakers.
//
// It is a pure instrumentation library: no admission logic, no transport,
// no I/O beyond exporter setup. Consumers wire an Observer into a breaker
// through StateHook (state-transition telemetry) or Instrument (execution
// telemetry around Breaker.Execute).
package observe
