// Package api implements the HTTP surface of the lead pipeline: the
// intake service that accepts leads and the insights service that
// serves triage results.
//
// Both services are chi routers assembled from the same base, so
// they share middleware, error shape, and operational endpoints, and
// differ only in the domain routes they mount.
//
// # Architecture
//
//	                 NewRouter(service, checkers...)
//	┌─────────────────────────────────────────────────────────┐
//	│  RequestID → RealIP → Recoverer → requestLogger → CORS  │
//	│  GET /healthz    GET /readyz    GET /metrics            │
//	└────────────────────────────┬────────────────────────────┘
//	                             │
//	         ┌───────────────────┴───────────────────┐
//	         ▼                                       ▼
//	┌──────────────────────┐              ┌─────────────────────────┐
//	│ Intake               │              │ Insights                │
//	│ POST /leads          │              │ GET /leads/{id}/insight │
//	│ GET  /leads/{id}     │              │                         │
//	└──────────────────────┘              └─────────────────────────┘
//	   │         │      │                              │
//	   ▼         ▼      ▼                              ▼
//	storage   events  idempotency                   storage
//
// # Endpoints
//
// POST /leads accepts a lead payload, stores it, publishes
// lead.created to the event log, and answers 201 with the stored
// lead. The Idempotency-Key header (a client generated UUID) is
// required: retries of the same request are answered 200 from the
// recorded outcome, and reuse of the token with a different body is
// rejected with 409. Bodies are compared canonically, so field order
// and whitespace differences do not break replay detection.
//
// GET /leads/{id} returns the stored lead, 404 when unknown.
//
// GET /leads/{id}/insight returns the triage result. 404 covers
// both an unknown lead and a lead whose event is still in flight;
// clients poll until the worker catches up.
//
// # Error Shape
//
// Every error is {"detail": "..."}. Status codes:
//
//	404  lead or insight not found
//	409  idempotency token reused with a different body
//	422  malformed or invalid body, bad UUID in path or header
//	500  storage or event log failure
//
// # Intake Ordering
//
// The create flow is: idempotency lookup, lead insert, event
// publish, idempotency record, response. The token is recorded last
// so a cached outcome always describes completed work. A publish
// failure after the insert fails the request and leaves the token
// unrecorded; the retry may create a second lead row, which is the
// accepted cost of never caching a response for work that half
// happened.
//
// # Usage
//
//	r := api.NewRouter("intake",
//		health.NewPostgresChecker(store, health.DefaultConfig()),
//		health.NewRedisChecker(client, health.DefaultConfig()),
//	)
//	api.NewIntake(store, eventLog, cache).Register(r)
//
//	srv := api.NewServer("intake", cfg.IntakeListenAddr, r)
//	go srv.Start()
//	...
//	srv.Shutdown(ctx)
//
// # Integration Points
//
//   - pkg/storage: lead and insight persistence
//   - pkg/events: lead.created publication
//   - pkg/idempotency: retry replay and conflict detection
//   - pkg/health, pkg/metrics: operational endpoints on every router
package api
