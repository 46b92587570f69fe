// Package metrics provides Prometheus metrics for Talon.
//
// The Collector owns a registry and two metric families: compile metrics
// (runs, duration, destination coverage, applicable-rule spread) and
// evaluation metrics (decisions by effect, errors by type, latency).
// `talon run` mounts Collector.Handler() on the configured metrics
// endpoint.
//
// All metric names carry the "talon_" namespace prefix.
package metrics
