package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CodesAllocated counts codes issued by the sequence allocator. Codes
	// reserved inside a transaction are counted once it commits.
	CodesAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_codes_allocated_total",
			Help: "Total number of reference data codes allocated and committed",
		},
		[]string{"resource_type", "pattern"},
	)

	// ImportRows counts reconciled rows by terminal outcome.
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refdata_import_rows_total",
			Help: "Total number of imported rows partitioned by outcome",
		},
		[]string{"resource_type", "outcome", "dry_run"},
	)

	// ImportDuration observes the wall time of one reconciliation batch.
	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refdata_import_duration_seconds",
			Help:    "Import batch latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource_type", "dry_run"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Middleware records request counts and latencies.
// The matched route template is used as label to keep cardinality low.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(c.Response().StatusCode()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
