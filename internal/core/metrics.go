package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the pipeline's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	filesProcessed *prometheus.CounterVec
	conversions    *prometheus.CounterVec
	bytesReceived  prometheus.Counter
	runDuration    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		filesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datasweeper",
			Name:      "files_processed_total",
			Help:      "Uploaded files run through the pipeline, by detected format and final status.",
		}, []string{"format", "status"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datasweeper",
			Name:      "conversions_total",
			Help:      "Converted downloads produced, by target format.",
		}, []string{"target"}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "datasweeper",
			Name:      "received_bytes_total",
			Help:      "Bytes of uploaded file content processed.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datasweeper",
			Name:      "run_duration_seconds",
			Help:      "Time to process one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	reg.MustRegister(m.filesProcessed, m.conversions, m.bytesReceived, m.runDuration)
	return m
}

func (m *Metrics) observeFile(r *FileResult) {
	if m == nil {
		return
	}
	format := string(r.Format)
	if format == "" {
		format = "unknown"
	}
	m.filesProcessed.WithLabelValues(format, string(r.Status)).Inc()
	m.bytesReceived.Add(float64(r.SizeBytes))
	if r.Output != nil {
		m.conversions.WithLabelValues(string(r.Output.Format)).Inc()
	}
}

func (m *Metrics) observeRun(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(elapsed.Seconds())
}
