// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salesdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "sales_history",
			Name:      "fetches_total",
			Help:      "Backend fetches by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	staleDiscards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "sales_history",
			Name:      "stale_discards_total",
			Help:      "Detail responses discarded because a newer load was issued.",
		},
	)

	outputs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesdesk",
			Subsystem: "receipts",
			Name:      "outputs_total",
			Help:      "Receipt outputs by tier.",
		},
		[]string{"tier"},
	)

	openViews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salesdesk",
			Subsystem: "sales_history",
			Name:      "open_views",
			Help:      "Sales history sessions currently open.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		fetches,
		staleDiscards,
		outputs,
		openViews,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordFetch counts a backend fetch; outcome is "ok" or "error".
func RecordFetch(op, outcome string) {
	fetches.WithLabelValues(op, outcome).Inc()
}

// RecordStaleDiscard counts a superseded detail response.
func RecordStaleDiscard() {
	staleDiscards.Inc()
}

// RecordOutput counts a receipt output on tier "print" or "download".
func RecordOutput(tier string) {
	outputs.WithLabelValues(tier).Inc()
}

// SetOpenViews reports the number of open sales history sessions.
func SetOpenViews(n int) {
	openViews.Set(float64(n))
}
