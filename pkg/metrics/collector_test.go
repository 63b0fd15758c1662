package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePendingCounter struct {
	count int64
	err   error
}

func (f *fakePendingCounter) PendingCount(ctx context.Context) (int64, error) {
	return f.count, f.err
}

// TestCollectorUpdatesGauge tests backlog gauge sampling
func TestCollectorUpdatesGauge(t *testing.T) {
	c := NewCollector(&fakePendingCounter{count: 7})
	c.collect()

	if got := testutil.ToFloat64(StreamPending); got != 7 {
		t.Errorf("StreamPending = %v, want 7", got)
	}
}

// TestCollectorKeepsLastSampleOnError tests error handling
func TestCollectorKeepsLastSampleOnError(t *testing.T) {
	StreamPending.Set(3)

	c := NewCollector(&fakePendingCounter{err: errors.New("redis down")})
	c.collect()

	if got := testutil.ToFloat64(StreamPending); got != 3 {
		t.Errorf("StreamPending = %v, want 3 after failed sample", got)
	}
}

// TestCollectorStartStop tests lifecycle
func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakePendingCounter{count: 1})
	c.Start()
	c.Stop()
}
