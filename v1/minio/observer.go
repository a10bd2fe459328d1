package minio

import (
	"time"

	"github.com/contextra/ragcore/v1/observability"
)

// observeOperation notifies the observer about an operation if one is
// configured. The bucket is the resource, the object key the subresource.
func (m *MinioClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if m == nil || m.observer == nil {
		return
	}

	if resource == "" {
		resource = m.cfg.Connection.BucketName
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "minio",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
