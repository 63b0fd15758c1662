// Package metrics exposes Prometheus instrumentation for the lead
// pipeline.
//
// All collectors are package level variables registered with the
// default registry at init, prefixed with sift_. Services mount
// Handler on /metrics; counters are incremented inline at the point
// where the counted thing happens, while gauges with no natural
// increment point (the stream backlog) are sampled by Collector on a
// 15 second tick.
//
// # Metric Groups
//
// HTTP: request totals and latency histograms, labeled by service,
// method, route pattern and status. The route label uses the chi
// route pattern, not the raw path, to keep cardinality bounded.
//
// Intake: leads created, events published, and idempotency cache
// outcomes (replay vs conflict).
//
// Worker: entries consumed and reclaimed per consumer, insights by
// intent, duplicate resolutions, failures by reason, dead letters,
// and triage latency.
//
// # Usage
//
//	mux.Handle("/metrics", metrics.Handler())
//
//	metrics.LeadsCreatedTotal.Inc()
//	metrics.InsightsCreatedTotal.WithLabelValues(string(insight.Intent)).Inc()
//
//	timer := metrics.NewTimer()
//	defer timer.ObserveDuration(metrics.TriageDuration)
//
// Backlog sampling:
//
//	collector := metrics.NewCollector(eventLog)
//	collector.Start()
//	defer collector.Stop()
package metrics
