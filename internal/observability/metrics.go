package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	gradesRequestsTotal  *prometheus.CounterVec
	gradesLatencySeconds *prometheus.HistogramVec
	gradesErrorsTotal    *prometheus.CounterVec
	reportBuildsTotal    *prometheus.CounterVec
	reportBuildSeconds   *prometheus.HistogramVec
	reportCacheTotal     *prometheus.CounterVec
	penaltyRowsTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the grades API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gradesRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grades_requests_total",
			Help: "Total number of grades API requests served.",
		}, []string{"method", "route", "status"})

		gradesLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grades_latency_seconds",
			Help:    "Latency distribution for grades API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		gradesErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grades_errors_total",
			Help: "Total number of error responses returned by grades endpoints.",
		}, []string{"method", "route", "status"})

		reportBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grades_report_builds_total",
			Help: "Grade reports built, by report kind and outcome.",
		}, []string{"kind", "outcome"})

		reportBuildSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grades_report_build_seconds",
			Help:    "Time spent building grade reports.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"kind"})

		reportCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grades_report_cache_lookups_total",
			Help: "Assignment report cache lookups, by result.",
		}, []string{"result"})

		penaltyRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grades_penalty_rows_created_total",
			Help: "Calculated penalty rows persisted.",
		})

		prometheus.MustRegister(
			gradesRequestsTotal,
			gradesLatencySeconds,
			gradesErrorsTotal,
			reportBuildsTotal,
			reportBuildSeconds,
			reportCacheTotal,
			penaltyRowsTotal,
		)
	})
}

// GradesRequests exposes the counter for grades API requests.
func GradesRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesRequestsTotal
}

// GradesLatency exposes the latency histogram for grades API requests.
func GradesLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradesLatencySeconds
}

// GradesErrors exposes the counter for grades API error responses.
func GradesErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesErrorsTotal
}

// ReportBuilds counts report builds by kind ("assignment", "participant", "team") and outcome.
func ReportBuilds() *prometheus.CounterVec {
	RegisterMetrics()
	return reportBuildsTotal
}

// ReportBuildLatency observes report build durations by kind.
func ReportBuildLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return reportBuildSeconds
}

// ReportCacheLookups counts cache hits and misses.
func ReportCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return reportCacheTotal
}

// PenaltyRowsCreated counts persisted penalty rows.
func PenaltyRowsCreated() prometheus.Counter {
	RegisterMetrics()
	return penaltyRowsTotal
}
