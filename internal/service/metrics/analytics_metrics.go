package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskreturn",
			Subsystem: "endpoint",
			Name:      "latency_seconds",
			Help:      "Latency of analysis endpoints, including the provider fetch",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskreturn",
			Subsystem: "endpoint",
			Name:      "errors_total",
			Help:      "Failed analysis requests by endpoint and error code",
		},
		[]string{"endpoint", "code"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors)
	})
}

// ObserveSince records the latency of endpoint measured from start.
func ObserveSince(endpoint string, start time.Time) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// CountError increments the error counter for endpoint.
func CountError(endpoint, code string) {
	EndpointErrors.WithLabelValues(endpoint, code).Inc()
}
