// Package telemetry exports decoder outcomes as Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricsNamespace = "bike"
	decoderSubsystem = "decoder"
)

// DecoderMetrics counts decoding runs per parameter set. It implements the
// decode observer hook of the KEM engine and is safe for concurrent use.
type DecoderMetrics struct {
	decodes        *prometheus.CounterVec
	failures       *prometheus.CounterVec
	syndromeWeight *prometheus.HistogramVec
}

// NewDecoderMetrics creates the collectors and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewDecoderMetrics(reg prometheus.Registerer) (*DecoderMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decodes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: decoderSubsystem,
			Name:      "runs_total",
			Help:      "Number of decoding runs performed during decapsulation",
		},
		[]string{"params"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: decoderSubsystem,
			Name:      "failures_total",
			Help:      "Number of decoding runs that ended with a non-zero syndrome",
		},
		[]string{"params"},
	)
	syndromeWeight := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: decoderSubsystem,
			Name:      "residual_syndrome_weight",
			Help:      "Weight of the syndrome left after the last decoding round",
			Buckets:   []float64{0, 1, 10, 100, 1000, 10000},
		},
		[]string{"params"},
	)

	for _, c := range []prometheus.Collector{decodes, failures, syndromeWeight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &DecoderMetrics{
		decodes:        decodes,
		failures:       failures,
		syndromeWeight: syndromeWeight,
	}, nil
}

// ObserveDecode records one decoding run.
func (m *DecoderMetrics) ObserveDecode(paramSet string, syndromeWeight int, converged bool) {
	m.decodes.WithLabelValues(paramSet).Inc()
	if !converged {
		m.failures.WithLabelValues(paramSet).Inc()
	}
	m.syndromeWeight.WithLabelValues(paramSet).Observe(float64(syndromeWeight))
}

// Runs returns the number of decoding runs recorded for paramSet.
func (m *DecoderMetrics) Runs(paramSet string) float64 {
	return counterValue(m.decodes.WithLabelValues(paramSet))
}

// Failures returns the number of non-converged decoding runs recorded for paramSet.
func (m *DecoderMetrics) Failures(paramSet string) float64 {
	return counterValue(m.failures.WithLabelValues(paramSet))
}
