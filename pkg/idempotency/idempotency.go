package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordTTL bounds how long a client token is remembered. Retries
// arriving after expiry are handled as new requests.
const recordTTL = 24 * time.Hour

const keyPrefix = "idempotency:"

// Record captures the outcome of a completed request so an exact
// retry can be answered without re-executing it. Request holds the
// canonical form of the original body, used to distinguish a retry
// from token reuse with a different payload.
type Record struct {
	StatusCode int             `json:"status_code"`
	Response   json.RawMessage `json:"response_data"`
	Request    json.RawMessage `json:"request_data"`
}

// Cache stores idempotency records in Redis, keyed by client token.
type Cache struct {
	client *redis.Client
}

// NewCache wraps a Redis client. The client is owned by the caller.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Check looks up the record for a token. Returns (nil, nil) when the
// token has not been seen. Callers should treat a lookup error as a
// miss after logging it; the store's unique constraints still hold
// the correctness line if the cache is unavailable.
func (c *Cache) Check(ctx context.Context, token string) (*Record, error) {
	raw, err := c.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read idempotency record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency record: %w", err)
	}
	return &rec, nil
}

// Store saves the outcome of a completed request under the token.
// Failures here are not fatal to the request that already succeeded;
// the worst case is that a retry is processed as a new request and
// stopped by storage constraints instead.
func (c *Cache) Store(ctx context.Context, token string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency record: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+token, raw, recordTTL).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}
