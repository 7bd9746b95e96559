// Package metrics exposes Prometheus collectors for the document service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded for every RPC.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kakeibo",
			Subsystem: "docstore",
			Name:      "requests_total",
			Help:      "Document service calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kakeibo",
			Subsystem: "docstore",
			Name:      "request_duration_seconds",
			Help:      "Document service call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

// Observe records one finished call. code is "ok" for successful calls.
func (m *Metrics) Observe(procedure, code string, seconds float64) {
	m.Requests.WithLabelValues(procedure, code).Inc()
	m.Duration.WithLabelValues(procedure).Observe(seconds)
}
