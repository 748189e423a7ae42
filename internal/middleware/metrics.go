package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MutationsTotal counts successful engine mutations by entity and operation.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_mutations_total",
		Help: "Total number of committed mutations by entity and operation",
	}, []string{"entity", "operation"})

	// EventPublishFailures counts mutation events that could not be published.
	// The transaction is already committed at that point, so each failure is a
	// delivery gap the fan-out service cannot see.
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_event_publish_failures_total",
		Help: "Total number of mutation events that failed to publish",
	})

	// FeedChunksScanned observes how many repository chunks a single feed page
	// had to scan before the visible window was filled.
	FeedChunksScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_feed_chunks_scanned",
		Help:    "Repository chunks scanned per feed page",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
)

// InitMetrics creates the HTTP metrics collector for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording per-route HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
