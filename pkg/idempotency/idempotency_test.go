package idempotency

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCache(client), mr
}

func TestCheckMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	rec, err := cache.Check(context.Background(), uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStoreAndCheck(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	token := uuid.New().String()

	stored := Record{
		StatusCode: 201,
		Response:   json.RawMessage(`{"id":"abc","note":"hello"}`),
		Request:    json.RawMessage(`{"note":"hello"}`),
	}
	require.NoError(t, cache.Store(ctx, token, stored))

	rec, err := cache.Check(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 201, rec.StatusCode)
	assert.JSONEq(t, `{"id":"abc","note":"hello"}`, string(rec.Response))
	assert.JSONEq(t, `{"note":"hello"}`, string(rec.Request))
}

func TestStoreSetsTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	token := uuid.New().String()

	require.NoError(t, cache.Store(context.Background(), token, Record{StatusCode: 201}))

	ttl := mr.TTL("idempotency:" + token)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestRecordExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	token := uuid.New().String()

	require.NoError(t, cache.Store(ctx, token, Record{StatusCode: 201}))

	mr.FastForward(25 * time.Hour)

	rec, err := cache.Check(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCheckCorruptRecord(t *testing.T) {
	cache, mr := newTestCache(t)
	token := uuid.New().String()

	mr.Set("idempotency:"+token, "not json")

	_, err := cache.Check(context.Background(), token)
	assert.Error(t, err)
}
