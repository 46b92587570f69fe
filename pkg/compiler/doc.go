// Package compiler orchestrates policy compilation: it loads a
// policy set, entity inventory, and attribute schema from pluggable
// sources, runs the destination classifier, and publishes the result
// as an immutable snapshot.
//
// Recompile runs are serialized by a mutex; readers take the latest
// artifact through Current without waiting on an in-flight run.
// FileWatcher triggers recompiles on debounced file changes,
// Scheduler on a cron interval, and both paths log a JSON patch of
// what the recompile actually changed.
package compiler
