package metrics

import (
	"github.com/contextra/ragcore/v1/observability"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ObserveOperation implements observability.Observer. Every reported backend
// operation becomes a count by outcome, a latency observation and, when the
// operation moved items, an item count.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	status := statusSuccess
	if op.Error != nil {
		status = statusError
	}

	m.operationsTotal.WithLabelValues(op.Component, op.Operation, status).Inc()
	m.operationDuration.WithLabelValues(op.Component, op.Operation).Observe(op.Duration.Seconds())

	if op.Size > 0 {
		m.operationSize.WithLabelValues(op.Component, op.Operation).Add(float64(op.Size))
	}
}
