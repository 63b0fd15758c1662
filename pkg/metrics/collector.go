package metrics

import (
	"context"
	"time"
)

// PendingCounter reports the consumer group backlog size.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int64, error)
}

// Collector periodically samples gauges that have no natural update
// point in the processing hot path, currently the stream backlog.
type Collector struct {
	pending PendingCounter
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(pending PendingCounter) *Collector {
	return &Collector{
		pending: pending,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pending, err := c.pending.PendingCount(ctx)
	if err != nil {
		// Keep the last good sample rather than zeroing the gauge.
		return
	}
	StreamPending.Set(float64(pending))
}
