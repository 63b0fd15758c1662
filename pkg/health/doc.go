// Package health provides dependency probes and the HTTP handlers
// behind /healthz and /readyz.
//
// Liveness and readiness are deliberately separate. /healthz answers
// 200 whenever the process can serve requests at all, so a stalled
// dependency never causes a restart loop. /readyz runs the
// registered checkers against PostgreSQL and Redis and answers 503
// until every dependency responds, which gates traffic during
// startup and outages.
//
// # Usage
//
//	cfg := health.DefaultConfig()
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(
//		health.NewPostgresChecker(store, cfg),
//		health.NewRedisChecker(client, cfg),
//	))
//
// Checkers implement the Checker interface, so services register
// only the dependencies they actually hold: intake needs both
// stores, the insights service needs PostgreSQL, the worker serves
// probes next to its /metrics listener.
package health
