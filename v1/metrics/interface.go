package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/contextra/ragcore/v1/observability"
)

// Collector is the metrics surface used by application code. It combines
// the Observer seam with factories for ad hoc metrics.
//
// This interface is implemented by the concrete *Metrics type.
type Collector interface {
	observability.Observer

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
