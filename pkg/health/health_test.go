package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func TestPostgresCheckerHealthy(t *testing.T) {
	checker := NewPostgresChecker(&fakePinger{}, DefaultConfig())

	result := checker.Check(context.Background())
	assert.True(t, result.Healthy)
	assert.Empty(t, result.Message)
	assert.False(t, result.CheckedAt.IsZero())
	assert.Equal(t, CheckTypePostgres, checker.Type())
}

func TestPostgresCheckerUnhealthy(t *testing.T) {
	checker := NewPostgresChecker(&fakePinger{err: errors.New("connection refused")}, DefaultConfig())

	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "connection refused")
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	checker := NewRedisChecker(client, DefaultConfig())
	assert.Equal(t, CheckTypeRedis, checker.Type())

	result := checker.Check(context.Background())
	assert.True(t, result.Healthy)

	mr.Close()

	result = checker.Check(context.Background())
	assert.False(t, result.Healthy)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	LivenessHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      error
		wantStatus int
		wantBody   string
	}{
		{"all healthy", nil, http.StatusOK, "ok"},
		{"postgres down", errors.New("no route to host"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Timeout: time.Second}
			handler := ReadinessHandler(NewPostgresChecker(&fakePinger{err: tt.pgErr}, cfg))

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Status)
			require.Contains(t, body.Checks, "postgres")
		})
	}
}
