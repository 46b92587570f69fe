// Package health provides health check endpoints for `talon run`.
//
// A Checker aggregates named component checks (snapshot store,
// inventory, compiler) and serves them as Kubernetes-style probes:
//
//	checker := health.New(5 * time.Second)
//	checker.Register("snapshot-store", store.Ping)
//	health.Register(mux, checker, version, commit, buildTime)
//
// /healthz answers as long as the process runs; /readyz runs every
// registered check concurrently and degrades to 503 when any component
// reports unhealthy.
package health
