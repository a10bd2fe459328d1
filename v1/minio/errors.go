package minio

import (
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrConnectionFailed is returned when the client has no live connection.
	ErrConnectionFailed = errors.New("minio: connection failed")

	// ErrObjectNotFound is returned when the requested object key does not
	// exist in the bucket.
	ErrObjectNotFound = errors.New("minio: object not found")
)

// translateError normalizes minio-go errors into package sentinels so
// callers never need to inspect S3 error codes.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	return err
}

// IsNotFoundError checks if the error indicates a missing object.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
