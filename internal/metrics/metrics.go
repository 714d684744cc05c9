// Package metrics provides Prometheus instrumentation for the market service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meatmarket_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meatmarket_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"method", "path"})

	// RecordMutations counts successful record writes by operation.
	RecordMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meatmarket_record_mutations_total",
		Help: "Successful record writes",
	}, []string{"op"})

	// ImportRows counts bulk import rows by outcome (uploaded, rejected).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meatmarket_import_rows_total",
		Help: "Bulk import rows by outcome",
	}, []string{"outcome"})

	// AnalyticsDuration tracks report computation time.
	AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meatmarket_analytics_duration_seconds",
		Help:    "Analytics report duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
)

// ObserveReport records how long a report took since start.
func ObserveReport(report string, start time.Time) {
	AnalyticsDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics. The route template is used as the
// path label to avoid high cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
