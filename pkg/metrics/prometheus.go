package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	analysesTotal *prometheus.CounterVec
	assetFailures *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	assetsPerRun  prometheus.Histogram
}

var (
	defaultRecorder *Recorder
	recorderOnce    sync.Once
)

// New returns the process-wide Prometheus recorder. Collectors register with
// the default registry once.
func New() *Recorder {
	recorderOnce.Do(func() {
		defaultRecorder = &Recorder{
			analysesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "riskreturn",
					Name:      "analyses_total",
					Help:      "Analysis runs by period and outcome",
				},
				[]string{"period", "status"},
			),
			assetFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "riskreturn",
					Name:      "asset_failures_total",
					Help:      "Assets skipped during analysis, by reason",
				},
				[]string{"reason"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "riskreturn",
					Name:      "errors_total",
					Help:      "Total number of errors encountered",
				},
				[]string{"type"},
			),
			fetchLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "riskreturn",
					Name:      "provider_fetch_seconds",
					Help:      "Price provider fetch latency",
					Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"provider"},
			),
			assetsPerRun: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "riskreturn",
					Name:      "assets_per_analysis",
					Help:      "Number of tickers requested per analysis",
					Buckets:   []float64{1, 2, 5, 10, 15, 25, 50},
				},
			),
		}
	})
	return defaultRecorder
}

// RecordAnalysis counts one analysis run.
func (r *Recorder) RecordAnalysis(period, status string, assets int) {
	r.analysesTotal.WithLabelValues(period, status).Inc()
	r.assetsPerRun.Observe(float64(assets))
}

// RecordAssetFailure counts one skipped asset.
func (r *Recorder) RecordAssetFailure(reason string) {
	r.assetFailures.WithLabelValues(reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetchLatency records provider latency in seconds.
func (r *Recorder) RecordFetchLatency(provider string, seconds float64) {
	r.fetchLatency.WithLabelValues(provider).Observe(seconds)
}
