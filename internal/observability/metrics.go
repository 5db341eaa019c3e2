package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservation_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	HTTPErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_http_errors_total",
			Help: "HTTP errors by route and error code",
		},
		[]string{"path", "method", "code"},
	)

	SeatingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_seating_decisions_total",
			Help: "Table assignment outcomes",
		},
		[]string{"outcome", "fallback"},
	)

	StaffingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_staffing_requests_total",
			Help: "Staffing escalation attempts by role and result",
		},
		[]string{"role", "result"},
	)

	HoldUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_hold_updates_total",
			Help: "Table hold updates by result",
		},
		[]string{"result"},
	)

	StoreCalls = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reservation_store_call_duration_seconds",
			Help:    "Document store call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "collection", "result"},
	)

	StoreBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reservation_store_breaker_state",
			Help: "Document store circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// Metrics is a thin facade over the Prometheus collectors so callers can stay nil-safe.
type Metrics struct{}

// NewMetrics returns the metrics facade.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	HTTPErrors.WithLabelValues(path, method, code).Inc()
}

// RecordStoreCall observes a document store round trip.
func (m *Metrics) RecordStoreCall(op, collection string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreCalls.WithLabelValues(op, collection, result).Observe(duration.Seconds())
}

// RecordDecision counts a seating outcome.
func (m *Metrics) RecordDecision(outcome string, fallback bool) {
	if m == nil {
		return
	}
	SeatingDecisions.WithLabelValues(outcome, strconv.FormatBool(fallback)).Inc()
}

// RecordStaffing counts a staffing escalation attempt.
func (m *Metrics) RecordStaffing(role string, err error) {
	if m == nil {
		return
	}
	StaffingRequests.WithLabelValues(role, resultLabel(err)).Inc()
}

// RecordHold counts a table hold update.
func (m *Metrics) RecordHold(err error) {
	if m == nil {
		return
	}
	HoldUpdates.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}
