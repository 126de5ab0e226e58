package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/V4T54L/lead-intake/internal/domain"
)

const namespace = "lead_intake"

// LeadMetrics holds all Prometheus metrics for the lead service.
// A nil *LeadMetrics is valid and records nothing.
type LeadMetrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	EventsTotal       *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	RateLimitedTotal  prometheus.Counter
}

// NewLeadMetrics creates the collectors and registers them on reg.
func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	factory := promauto.With(reg)
	return &LeadMetrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "operations_total",
			Help:      "Total number of collection operations by operation and outcome.",
		}, []string{"op", "outcome"}), // outcome: ok, not_found, invalid, store_unavailable, error
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "collection",
			Name:      "operation_duration_seconds",
			Help:      "Duration of collection operations, including the store round trip.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of lead events by type and outcome.",
		}, []string{"type", "outcome"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of lead submissions rejected by the rate limiter.",
		}),
	}
}

// ObserveOperation records the outcome and duration of a collection operation.
func (m *LeadMetrics) ObserveOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(op, Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordEvent counts a lead event publishing attempt.
func (m *LeadMetrics) RecordEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// ObserveHTTP records a served request.
func (m *LeadMetrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordRateLimited counts a rejected submission.
func (m *LeadMetrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

// Outcome maps an operation error onto a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidFilterArgs):
		return "invalid"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
