package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts total HTTP requests
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request latency
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "walletplatform",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpRequestsInFlight tracks concurrent requests
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "walletplatform",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// httpResponseSize measures response body size
	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "walletplatform",
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8), // 100B to 1GB
		},
		[]string{"method", "path"},
	)
)

// Business metrics for the wallet engine and the event pipeline.
var (
	// FundingsTotal counts FundWallet attempts by outcome.
	FundingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "engine",
			Name:      "fundings_total",
			Help:      "Total number of FundWallet attempts",
		},
		[]string{"outcome"}, // ok, optimistic_lock_exhausted, validation_error, not_found, error
	)

	// TransfersTotal counts TransferFunds attempts by outcome.
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "engine",
			Name:      "transfers_total",
			Help:      "Total number of TransferFunds attempts",
		},
		[]string{"outcome"}, // completed, insufficient_balance, not_found, validation_error, error
	)

	// OptimisticRetriesTotal counts version-CAS retries consumed by FundWallet.
	OptimisticRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "engine",
			Name:      "optimistic_retries_total",
			Help:      "Total number of optimistic-lock retries consumed across all fundings",
		},
	)

	// PublicationFailuresTotal counts post-commit publish failures (logged, never surfaced).
	PublicationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "publisher",
			Name:      "publication_failures_total",
			Help:      "Total number of post-commit event publications that failed",
		},
		[]string{"event_type"},
	)

	// ConsumerLag approximates the History Service's distance behind the log,
	// expressed as the high watermark minus the last committed offset.
	ConsumerLag = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "walletplatform",
			Subsystem: "consumer",
			Name:      "lag",
			Help:      "Consumer lag per partition (high watermark - committed offset)",
		},
		[]string{"topic", "partition"},
	)

	// ProjectionOutcomesTotal counts projector apply outcomes.
	ProjectionOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletplatform",
			Subsystem: "projector",
			Name:      "outcomes_total",
			Help:      "Total number of projector applications by outcome",
		},
		[]string{"event_type", "outcome"}, // outcome: applied, already_applied, poison, error
	)
)

// DBConnectionsTotal tracks the service's pgx pool utilization; the
// readiness probe refreshes it on every poll whose database ping succeeds.
var DBConnectionsTotal = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "walletplatform",
		Subsystem: "db",
		Name:      "connections",
		Help:      "Number of database connections",
	},
	[]string{"state"}, // idle, in_use, max
)

// Metrics returns Prometheus metrics middleware
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(c.Writer.Size()))
	}
}

// UpdateDBConnections refreshes the pool-utilization gauge.
func UpdateDBConnections(idle, inUse, max int32) {
	DBConnectionsTotal.WithLabelValues("idle").Set(float64(idle))
	DBConnectionsTotal.WithLabelValues("in_use").Set(float64(inUse))
	DBConnectionsTotal.WithLabelValues("max").Set(float64(max))
}
