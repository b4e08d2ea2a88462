package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiInvocationsTotal,
		aiInvocationLatencyMs,
		aiInflight,
	)
}

var (
	aiInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_invocations_total",
			Help: "Backend invocations per capability and outcome (success/failure).",
		},
		[]string{"capability", "outcome"},
	)

	aiInvocationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_invocation_latency_ms",
			Help:    "Backend call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 8000, 15000, 30000, 60000},
		},
		[]string{"capability", "success"},
	)

	aiInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ai_invocations_inflight",
			Help: "Backend calls currently awaiting a response.",
		},
		[]string{"capability"},
	)
)

// ObserveInvocation records one finished backend call.
func ObserveInvocation(capability string, latency time.Duration, success bool) {
	outcome, ok := "failure", "false"
	if success {
		outcome, ok = "success", "true"
	}
	aiInvocationsTotal.WithLabelValues(norm(capability), outcome).Inc()
	aiInvocationLatencyMs.WithLabelValues(norm(capability), ok).
		Observe(float64(latency) / float64(time.Millisecond))
}

// TrackInflight increments the in-flight gauge and returns the matching decrement.
func TrackInflight(capability string) func() {
	g := aiInflight.WithLabelValues(norm(capability))
	g.Inc()
	return g.Dec
}
