package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orders_api"

var (
	// HTTPRequestsTotal counts handled requests by route template.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// OrderOperationsTotal counts checkout, cancel and status_update outcomes.
	OrderOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_operations_total",
			Help:      "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of login attempts by result",
		},
		[]string{"result"},
	)
)

// Middleware records request count and latency. The path label is the
// matched route template so ids do not explode cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		path := utils.CopyString(c.Route().Path)
		if path == "" || path == "/" && c.Path() != "/" {
			path = "unmatched"
		}
		// label values outlive the request; fiber reuses its buffers
		labels := []string{utils.CopyString(c.Method()), path, strconv.Itoa(status)}

		HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	OrderOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordAuthAttempt(result string) {
	AuthAttemptsTotal.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
