package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeze_operations_total",
			Help: "Resolver and fetch operations by kind and outcome.",
		},
		[]string{"op", "outcome"},
	)

	StaleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breeze_stale_responses_total",
			Help: "Completions discarded because a newer request of the same kind was issued.",
		},
		[]string{"op"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breeze_upstream_request_duration_seconds",
			Help:    "Latency of upstream API calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal, StaleResponsesTotal, UpstreamDuration)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
