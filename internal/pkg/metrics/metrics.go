package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymdemand",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Model metrics
	EstimationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "model",
		Name:      "estimations_total",
		Help:      "Gravity-model estimations by source and outcome",
	}, []string{"source", "outcome"})

	EstimationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymdemand",
		Subsystem: "model",
		Name:      "estimation_duration_seconds",
		Help:      "Time spent evaluating the gravity model",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"source"})

	MatrixCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gymdemand",
		Subsystem: "model",
		Name:      "matrix_cells",
		Help:      "Facility×population cells per estimation",
		Buckets:   prometheus.ExponentialBuckets(1, 10, 9),
	})

	NegativeDemandFacilities = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "model",
		Name:      "negative_demand_facilities_total",
		Help:      "Facilities whose aggregate net demand came out negative",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymdemand",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published to NATS by subject kind and outcome",
	}, []string{"kind", "outcome"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdemand",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdemand",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymdemand",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Outcome labels for EstimationsTotal.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid_input"
	OutcomeDegenerate = "degenerate_geometry"
	OutcomeError      = "error"
)

// ObserveEstimation records one estimation.
func ObserveEstimation(source, outcome string, elapsed time.Duration, cells int) {
	EstimationsTotal.WithLabelValues(source, outcome).Inc()
	EstimationDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if cells > 0 {
		MatrixCells.Observe(float64(cells))
	}
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
