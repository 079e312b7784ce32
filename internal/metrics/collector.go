// Package metrics exposes Prometheus metrics for chat turns, token
// consumption, and accumulated cost.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zengen"

var (
	// TurnsTotal counts chat turns by outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Total number of chat turns",
		},
		[]string{"model", "provider", "status"},
	)

	// TurnsFailed counts failed chat turns by error type.
	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_failed_total",
			Help:      "Total number of failed chat turns",
		},
		[]string{"model", "provider", "error_type"},
	)

	// TokensConsumed counts accounted tokens by kind.
	TokensConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_consumed_total",
			Help:      "Total tokens consumed across all turns",
		},
		[]string{"model", "kind"},
	)

	// CostTotal accumulates derived usage cost in USD.
	CostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_cost_usd_total",
			Help:      "Total derived usage cost in USD",
		},
		[]string{"model", "kind"},
	)

	// TurnLatency tracks end-to-end turn latency.
	TurnLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_turn_latency_seconds",
			Help:      "End-to-end chat turn latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model", "provider"},
	)
)

// ObserveTurn records the outcome and latency of one chat turn.
func ObserveTurn(model, provider string, duration time.Duration, errType string) {
	status := "ok"
	if errType != "" {
		status = "error"
		TurnsFailed.WithLabelValues(model, provider, errType).Inc()
	}
	TurnsTotal.WithLabelValues(model, provider, status).Inc()
	TurnLatency.WithLabelValues(model, provider).Observe(duration.Seconds())
}

// ObserveUsage records an accounted usage event.
func ObserveUsage(model, kind string, units int, cost float64) {
	TokensConsumed.WithLabelValues(model, kind).Add(float64(units))
	CostTotal.WithLabelValues(model, kind).Add(cost)
}
