// Package storage provides persistence for leads and insights on
// PostgreSQL.
//
// The package exposes a Store interface so handlers and workers can
// be tested against mocks, with PostgresStore as the production
// implementation built on sqlx over the pgx stdlib driver.
//
// # Architecture
//
//	┌──────────────────────────────────────────────┐
//	│                 Store (interface)            │
//	│  CreateLead / GetLead                        │
//	│  CreateInsight / GetInsightByLead /          │
//	│  InsightExists                               │
//	└──────────────────────┬───────────────────────┘
//	                       │
//	                       ▼
//	┌──────────────────────────────────────────────┐
//	│               PostgresStore                  │
//	│         sqlx.DB over pgx/stdlib              │
//	└──────────────────────┬───────────────────────┘
//	                       │
//	                       ▼
//	┌──────────────────────────────────────────────┐
//	│  leads                insights               │
//	│  (id PK)              (id PK,                │
//	│                        lead_id FK,           │
//	│                        UNIQUE(lead_id,       │
//	│                               content_hash)) │
//	└──────────────────────────────────────────────┘
//
// # Core Components
//
// Store: the persistence contract. Both HTTP services and the triage
// worker depend on this interface, never on PostgresStore directly.
//
// PostgresStore: sqlx-backed implementation. Open configures a
// modest connection pool; NewPostgresStore wraps an existing
// database handle for tests.
//
// Sentinel errors: ErrLeadNotFound and ErrInsightNotFound map to
// HTTP 404 at the API layer. ErrDuplicateInsight surfaces a unique
// constraint conflict on (lead_id, content_hash) and is treated as
// success by the worker, because it means another delivery of the
// same event already persisted the classification.
//
// # Usage
//
// Opening a store:
//
//	store, err := storage.Open(cfg.PostgresDSN())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if err := store.Ping(ctx); err != nil {
//		return err
//	}
//
// Idempotent insight persistence:
//
//	err := store.CreateInsight(ctx, insight)
//	if errors.Is(err, storage.ErrDuplicateInsight) {
//		// already classified, nothing to do
//		return nil
//	}
//
// # Integration Points
//
//   - pkg/api: serves leads and insights over HTTP
//   - pkg/worker: checks for and persists insights during triage
//   - pkg/health: wraps Ping for readiness probes
//   - cmd/sift-migrate: owns the schema this package queries
//
// # Design Patterns
//
// The duplicate pre-check (InsightExists) is an optimization to skip
// classification work on redelivery. It does not guard correctness:
// two workers can both pass the check, and the unique constraint
// decides the race. CreateInsight therefore reports the conflict as
// a distinct sentinel rather than a generic failure.
package storage
