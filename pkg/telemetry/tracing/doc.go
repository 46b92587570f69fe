// Package tracing provides OpenTelemetry distributed tracing for Talon.
//
// Spans are exported over OTLP gRPC to the configured collector, sampled
// with a parent-based ratio sampler. The compiler opens a span per
// recompile with child spans per stage; the CLI evaluate path opens one
// span per decision.
//
// When tracing is disabled in configuration, New returns a tracer backed
// by the noop provider so call sites need no conditionals.
package tracing
