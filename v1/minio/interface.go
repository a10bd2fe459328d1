package minio

import (
	"context"
	"io"
)

// Client is the blob store surface used by the rest of the application.
// Raw document uploads are stored under their object key and fetched back
// during ingestion.
//
// This interface is implemented by the concrete *MinioClient type.
type Client interface {
	// Put uploads an object and returns the number of bytes written.
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64) (int64, error)

	// PutBytes uploads a byte slice under the given object key.
	PutBytes(ctx context.Context, objectKey string, data []byte) (int64, error)

	// Get retrieves an object's full contents.
	Get(ctx context.Context, objectKey string) ([]byte, error)

	// Stat returns the size of an object without fetching it.
	Stat(ctx context.Context, objectKey string) (int64, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectKey string) error

	// GracefulShutdown stops the client's background goroutines.
	GracefulShutdown()
}
