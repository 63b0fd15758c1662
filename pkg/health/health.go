package health

import (
	"context"
	"time"
)

// CheckType represents the type of health check
type CheckType string

const (
	CheckTypePostgres CheckType = "postgres"
	CheckTypeRedis    CheckType = "redis"
)

// Result represents the outcome of a health check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface that all health checkers must implement
type Checker interface {
	// Check performs the health check and returns the result
	Check(ctx context.Context) Result

	// Type returns the type of health check
	Type() CheckType
}

// Config contains common configuration for all health checks
type Config struct {
	// Timeout is the maximum time to wait for a health check to complete
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
	}
}

// run executes a ping style probe under the configured timeout and
// wraps the outcome in a Result.
func run(ctx context.Context, cfg Config, probe func(context.Context) error) Result {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err := probe(checkCtx)

	result := Result{
		Healthy:   err == nil,
		CheckedAt: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}
