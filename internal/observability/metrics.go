package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	activityLogsPurged    prometheus.Counter
	activityStatsCacheHit *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors of the activity log API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_api_requests_total",
			Help: "Total number of activity log API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "activity_api_latency_seconds",
			Help:    "Latency distribution for activity log API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_api_errors_total",
			Help: "Total number of error responses returned by activity log endpoints.",
		}, []string{"method", "route", "status"})

		activityLogsPurged = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_logs_purged_total",
			Help: "Total number of activity log rows removed by bulk deletes.",
		})

		activityStatsCacheHit = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_stats_cache_lookups_total",
			Help: "Activity statistics cache lookups partitioned by result.",
		}, []string{"result"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, activityLogsPurged, activityStatsCacheHit)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ActivityLogsPurged counts rows removed by bulk deletes.
func ActivityLogsPurged() prometheus.Counter {
	RegisterMetrics()
	return activityLogsPurged
}

// ActivityStatsCacheLookups counts stats cache lookups by "hit" or "miss".
func ActivityStatsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return activityStatsCacheHit
}

// MetricsHandler serves the default registry in the Prometheus text format.
// A collector failing to gather does not blank the remaining series.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
}
