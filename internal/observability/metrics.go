package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	evaluationsTotal      *prometheus.CounterVec
	submissionsStored     *prometheus.CounterVec
	analyticsCacheLookups *prometheus.CounterVec
	submissionEvents      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "promptlab_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_evaluations_total",
			Help: "Evaluation pipeline runs by outcome.",
		}, []string{"stage", "outcome"})

		submissionsStored = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_submissions_persisted_total",
			Help: "Submission inserts by result.",
		}, []string{"source", "result"})

		analyticsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_analytics_cache_lookups_total",
			Help: "Analytics cache lookups by result.",
		}, []string{"result"})

		submissionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptlab_submission_events_total",
			Help: "Submission events published by transport and result.",
		}, []string{"transport", "result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			evaluationsTotal,
			submissionsStored,
			analyticsCacheLookups,
			submissionEvents,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Evaluations counts evaluation pipeline outcomes.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// SubmissionsPersisted counts submission inserts.
func SubmissionsPersisted() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsStored
}

// AnalyticsCacheLookups counts analytics cache hits and misses.
func AnalyticsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheLookups
}

// SubmissionEvents counts published submission events.
func SubmissionEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionEvents
}
