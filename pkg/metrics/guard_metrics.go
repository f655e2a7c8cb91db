package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authz",
		Subsystem: "guard",
		Name:      "decisions_total",
		Help:      "Total number of access guard decisions broken down by check and result.",
	}, []string{"check", "result"})

	guardLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authz",
		Subsystem: "guard",
		Name:      "latency_seconds",
		Help:      "Latency distribution for access guard decisions.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1, 2,
		},
	}, []string{"check", "result"})
)

// RecordGuardDecision records one guard decision. check is "permission" or
// "super_admin".
func RecordGuardDecision(check string, allowed bool, latency time.Duration) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	labels := prometheus.Labels{
		"check":  check,
		"result": result,
	}
	guardDecisions.With(labels).Inc()
	guardLatency.With(labels).Observe(latency.Seconds())
}
