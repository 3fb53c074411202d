package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		mailDeliveries,
		cacheOps,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"agent", "model", "success"},
	)

	mailDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Outbound mail deliveries by status (sent/failed).",
		},
		[]string{"status"},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_cache_ops_total",
			Help: "Search summary cache operations (hit/miss/error).",
		},
		[]string{"op"},
	)
)

func ObserveAICall(agent, model string, latencyMs int, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(agent), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncMailDelivery(sent bool) {
	status := "sent"
	if !sent {
		status = "failed"
	}
	mailDeliveries.WithLabelValues(status).Inc()
}

func IncCacheOp(op string) { cacheOps.WithLabelValues(norm(op)).Inc() }
