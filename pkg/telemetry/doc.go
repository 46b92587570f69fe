// Package telemetry groups the observability subpackages for Talon.
//
// # Components
//
//   - logging: structured logging (log/slog) with optional IP redaction
//   - metrics: Prometheus metrics for compile runs and evaluations
//   - tracing: OpenTelemetry tracing over OTLP gRPC
//   - health: liveness/readiness endpoints for `talon run`
//
// Each subpackage is configured from the matching section of
// config.TelemetryConfig and is usable independently; the run command
// wires all four together.
package telemetry
