package health

import "context"

// Pinger is the slice of the storage layer needed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresChecker probes database connectivity.
type PostgresChecker struct {
	store  Pinger
	config Config
}

// NewPostgresChecker creates a checker over a storage handle.
func NewPostgresChecker(store Pinger, config Config) *PostgresChecker {
	return &PostgresChecker{
		store:  store,
		config: config,
	}
}

// Check implements Checker.
func (c *PostgresChecker) Check(ctx context.Context) Result {
	return run(ctx, c.config, c.store.Ping)
}

// Type implements Checker.
func (c *PostgresChecker) Type() CheckType {
	return CheckTypePostgres
}
