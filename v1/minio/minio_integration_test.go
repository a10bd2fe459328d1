package minio

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMinio starts a disposable MinIO container and returns a connected
// client with a fresh bucket.
func setupMinio(t *testing.T) *MinioClient {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image: "minio/minio:RELEASE.2024-08-17T01-24-54Z",
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = minioContainer.Terminate(ctx) })

	host, err := minioContainer.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := minioContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Connection.Endpoint = host + ":" + mappedPort.Port()
	cfg.Connection.AccessKeyID = "minioadmin"
	cfg.Connection.SecretAccessKey = "minioadmin"
	cfg.Connection.BucketName = "documents"
	cfg.Connection.CreateBucket = true

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(client.GracefulShutdown)

	return client
}

func TestMinioIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	client := setupMinio(t)
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		content := "The quick brown fox jumps over the lazy dog."
		n, err := client.Put(ctx, "uploads/doc-1.txt", strings.NewReader(content), int64(len(content)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), n)

		data, err := client.Get(ctx, "uploads/doc-1.txt")
		require.NoError(t, err)
		assert.Equal(t, content, string(data))

		size, err := client.Stat(ctx, "uploads/doc-1.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), size)
	})

	t.Run("PutBytes", func(t *testing.T) {
		_, err := client.PutBytes(ctx, "uploads/doc-2.txt", []byte("hello"))
		require.NoError(t, err)

		data, err := client.Get(ctx, "uploads/doc-2.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("GetMissingObject", func(t *testing.T) {
		_, err := client.Get(ctx, "uploads/absent.txt")
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("Delete", func(t *testing.T) {
		_, err := client.PutBytes(ctx, "uploads/doc-3.txt", []byte("bye"))
		require.NoError(t, err)
		require.NoError(t, client.Delete(ctx, "uploads/doc-3.txt"))

		_, err = client.Get(ctx, "uploads/doc-3.txt")
		assert.True(t, IsNotFoundError(err))

		// Deleting again is a no-op.
		assert.NoError(t, client.Delete(ctx, "uploads/doc-3.txt"))
	})
}
