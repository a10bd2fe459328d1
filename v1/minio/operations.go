package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// Put uploads an object to the configured bucket and returns the number of
// bytes written.
func (m *MinioClient) Put(ctx context.Context, objectKey string, reader io.Reader, size int64) (int64, error) {
	start := time.Now()

	c := m.client.Load()
	if c == nil {
		return 0, ErrConnectionFailed
	}

	info, err := c.PutObject(ctx, m.cfg.Connection.BucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	err = translateError(err)

	m.observeOperation("put", "", objectKey, time.Since(start), err, info.Size, nil)
	if err != nil {
		return 0, fmt.Errorf("minio: put %s: %w", objectKey, err)
	}
	return info.Size, nil
}

// PutBytes uploads a byte slice under the given object key.
func (m *MinioClient) PutBytes(ctx context.Context, objectKey string, data []byte) (int64, error) {
	return m.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)))
}

// Get retrieves an object and returns its full contents.
func (m *MinioClient) Get(ctx context.Context, objectKey string) ([]byte, error) {
	start := time.Now()

	c := m.client.Load()
	if c == nil {
		return nil, ErrConnectionFailed
	}

	obj, err := c.GetObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.GetObjectOptions{})
	if err == nil {
		var data []byte
		data, err = io.ReadAll(obj)
		_ = obj.Close()
		if err == nil {
			m.observeOperation("get", "", objectKey, time.Since(start), nil, int64(len(data)), nil)
			return data, nil
		}
	}
	err = translateError(err)

	m.observeOperation("get", "", objectKey, time.Since(start), err, 0, nil)
	return nil, fmt.Errorf("minio: get %s: %w", objectKey, err)
}

// Stat returns the size of an object without fetching it.
func (m *MinioClient) Stat(ctx context.Context, objectKey string) (int64, error) {
	start := time.Now()

	c := m.client.Load()
	if c == nil {
		return 0, ErrConnectionFailed
	}

	info, err := c.StatObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.StatObjectOptions{})
	err = translateError(err)

	m.observeOperation("stat", "", objectKey, time.Since(start), err, info.Size, nil)
	if err != nil {
		return 0, fmt.Errorf("minio: stat %s: %w", objectKey, err)
	}
	return info.Size, nil
}

// Delete removes an object from the bucket. Deleting a missing object is not
// an error.
func (m *MinioClient) Delete(ctx context.Context, objectKey string) error {
	start := time.Now()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	err := translateError(c.RemoveObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.RemoveObjectOptions{}))
	if IsNotFoundError(err) {
		err = nil
	}

	m.observeOperation("delete", "", objectKey, time.Since(start), err, 0, nil)
	if err != nil {
		return fmt.Errorf("minio: delete %s: %w", objectKey, err)
	}
	return nil
}
