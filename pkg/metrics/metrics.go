package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_http_requests_total",
			Help: "Total number of HTTP requests by service, method, route and status",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sift_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	// Intake metrics
	LeadsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sift_leads_created_total",
			Help: "Total number of leads created",
		},
	)

	IdempotencyRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_idempotency_replies_total",
			Help: "Total number of requests answered from the idempotency cache by outcome",
		},
		[]string{"outcome"},
	)

	EventsPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sift_events_published_total",
			Help: "Total number of events appended to the lead stream",
		},
	)

	// Worker metrics
	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_events_consumed_total",
			Help: "Total number of stream entries delivered by consumer",
		},
		[]string{"consumer"},
	)

	EventsReclaimedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_events_reclaimed_total",
			Help: "Total number of idle stream entries claimed from other consumers",
		},
		[]string{"consumer"},
	)

	InsightsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_insights_created_total",
			Help: "Total number of insights persisted by intent",
		},
		[]string{"intent"},
	)

	DuplicateInsightsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sift_duplicate_insights_total",
			Help: "Total number of redeliveries resolved by an existing insight",
		},
	)

	TriageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_triage_failures_total",
			Help: "Total number of failed triage attempts by reason",
		},
		[]string{"reason"},
	)

	DeadLettersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sift_dead_letters_total",
			Help: "Total number of entries moved to the dead letter stream",
		},
	)

	TriageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sift_triage_duration_seconds",
			Help:    "Time taken to process one lead event in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Stream metrics
	StreamPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sift_stream_pending",
			Help: "Entries delivered to the consumer group but not yet acknowledged",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(LeadsCreatedTotal)
	prometheus.MustRegister(IdempotencyRepliesTotal)
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(EventsConsumedTotal)
	prometheus.MustRegister(EventsReclaimedTotal)
	prometheus.MustRegister(InsightsCreatedTotal)
	prometheus.MustRegister(DuplicateInsightsTotal)
	prometheus.MustRegister(TriageFailuresTotal)
	prometheus.MustRegister(DeadLettersTotal)
	prometheus.MustRegister(TriageDuration)
	prometheus.MustRegister(StreamPending)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
