package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the HTTP server that
// exposes it at /metrics.
//
// Each process gets its own isolated registry so that metric names cannot
// collide when several services run in one binary. All metrics carry a
// constant `service` label from the configuration.
type Metrics struct {
	// Server is the HTTP server exposing the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	Registry *prometheus.Registry

	// Operation metrics fed by ObserveOperation.
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationSize     *prometheus.CounterVec
}

// NewMetrics builds the registry, registers the operation metrics and the
// optional default collectors, and prepares the HTTP server. The server is
// not started; RegisterMetricsLifecycle does that.
func NewMetrics(cfg Config) (*Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	registry := prometheus.NewRegistry()

	// All metrics emitted by this process automatically include the label
	// service="<cfg.ServiceName>".
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.operationsTotal = createCounterVec(
		"backend_operations_total",
		"Total operations against external backends, by component, operation and outcome",
		[]string{"component", "operation", "status"},
	)
	m.operationDuration = createHistogramVec(
		"backend_operation_duration_seconds",
		"Latency of operations against external backends",
		[]string{"component", "operation"},
		prometheus.DefBuckets,
	)
	m.operationSize = createCounterVec(
		"backend_operation_items_total",
		"Items moved by backend operations: texts embedded, points upserted, chunks retrieved",
		[]string{"component", "operation"},
	)

	wrapped.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.operationSize,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return m, nil
}
