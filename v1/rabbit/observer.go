package rabbit

import (
	"time"

	"github.com/contextra/ragcore/v1/observability"
)

// observeOperation notifies the observer about an operation if one is
// configured. Publish and consume operations use the exchange or queue as
// the resource and the routing key as the subresource.
func (rb *RabbitClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if rb.observer != nil {
		rb.observer.ObserveOperation(observability.OperationContext{
			Component:   "rabbit",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
			Metadata:    nil,
		})
	}
}
