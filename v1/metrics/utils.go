package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CreateCounter registers and returns a counter vector on this registry.
// Panics on duplicate registration, like prometheus.MustRegister.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram registers and returns a histogram vector on this registry.
// Pass prometheus.DefBuckets unless the metric needs custom latency bounds.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge registers and returns a gauge vector on this registry.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{Name: name, Help: help}
	return prometheus.NewCounterVec(opts, labels)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}
	return prometheus.NewHistogramVec(opts, labels)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	opts := prometheus.GaugeOpts{Name: name, Help: help}
	return prometheus.NewGaugeVec(opts, labels)
}
