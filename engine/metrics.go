package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nadja_turns_total",
			Help: "Handled chat turns by outcome",
		},
		[]string{"outcome"},
	)
	providerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nadja_provider_errors_total",
			Help: "Generation failures by classified kind",
		},
		[]string{"kind"},
	)
	generateSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nadja_generate_duration_seconds",
			Help:    "Latency of provider generation calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(turnsTotal, providerErrors, generateSeconds)
}

const (
	outcomeGenerated  = "generated"
	outcomeFallback   = "fallback"
	outcomeWake       = "wake"
	outcomeSuppressed = "suppressed"
)
