package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisChecker probes Redis connectivity.
type RedisChecker struct {
	client *redis.Client
	config Config
}

// NewRedisChecker creates a checker over a Redis client.
func NewRedisChecker(client *redis.Client, config Config) *RedisChecker {
	return &RedisChecker{
		client: client,
		config: config,
	}
}

// Check implements Checker.
func (c *RedisChecker) Check(ctx context.Context) Result {
	return run(ctx, c.config, func(ctx context.Context) error {
		return c.client.Ping(ctx).Err()
	})
}

// Type implements Checker.
func (c *RedisChecker) Type() CheckType {
	return CheckTypeRedis
}
