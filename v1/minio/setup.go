package minio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/contextra/ragcore/v1/observability"
)

const connectionHealthCheckInterval = 30 * time.Second

// MinioClient is the blob store for raw document uploads. It wraps the
// minio-go client with connection monitoring and automatic reconnection.
type MinioClient struct {
	// client is swapped atomically during reconnection so it never races
	// with in-flight operations.
	client atomic.Pointer[minio.Client]

	cfg      Config
	observer observability.Observer
	logger   Logger

	shutdownSignal  chan struct{}
	reconnectSignal chan error

	closeShutdownOnce sync.Once
}

// NewClient creates and validates a new blob store client. It connects to
// MinIO, verifies the connection and makes sure the configured bucket exists.
func NewClient(config Config) (*MinioClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := connectToMinio(config)
	if err != nil {
		return nil, err
	}

	m := &MinioClient{
		cfg:             config,
		logger:          config.Logger,
		shutdownSignal:  make(chan struct{}),
		reconnectSignal: make(chan error, 1),
	}
	m.client.Store(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.validateConnection(ctx); err != nil {
		return nil, err
	}
	if err := m.ensureBucketExists(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

func connectToMinio(cfg Config) (*minio.Client, error) {
	return minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
}

// validateConnection checks connectivity with a bucket-scoped probe so the
// credentials do not need ListAllMyBuckets.
func (m *MinioClient) validateConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}
	_, err := c.BucketExists(ctx, m.cfg.Connection.BucketName)
	return err
}

// ensureBucketExists checks the configured bucket and creates it when the
// config allows bucket creation.
func (m *MinioClient) ensureBucketExists(ctx context.Context) error {
	bucket := m.cfg.Connection.BucketName

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio: check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if !m.cfg.Connection.CreateBucket {
		return fmt.Errorf("minio: bucket %s does not exist", bucket)
	}

	m.logInfo(ctx, "Bucket does not exist, creating it", map[string]interface{}{
		"bucket": bucket,
		"region": m.cfg.Connection.Region,
	})
	return c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: m.cfg.Connection.Region})
}

// MonitorConnection periodically checks the connection and signals the retry
// loop when the health check fails. Runs until shutdown.
func (m *MinioClient) MonitorConnection(ctx context.Context) {
	ticker := time.NewTicker(connectionHealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := m.validateConnection(checkCtx)
			cancel()

			if err != nil {
				m.logError(ctx, "MinIO connection health check failed", map[string]interface{}{
					"endpoint": m.cfg.Connection.Endpoint,
					"error":    err.Error(),
				})
				select {
				case m.reconnectSignal <- err:
				default:
				}
			}

		case <-m.shutdownSignal:
			return

		case <-ctx.Done():
			return
		}
	}
}

// RetryConnection reestablishes the connection when the monitor reports a
// failure. Runs until shutdown.
func (m *MinioClient) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-m.shutdownSignal:
			return

		case <-ctx.Done():
			return

		case err, ok := <-m.reconnectSignal:
			if !ok {
				return
			}
			m.logWarn(ctx, "MinIO connection issue detected, attempting reconnection", map[string]interface{}{
				"endpoint": m.cfg.Connection.Endpoint,
				"error":    err.Error(),
			})

			for {
				select {
				case <-m.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
				}

				newClient, err := connectToMinio(m.cfg)
				if err == nil {
					probeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					_, err = newClient.BucketExists(probeCtx, m.cfg.Connection.BucketName)
					cancel()
				}
				if err != nil {
					m.logError(ctx, "MinIO reconnection failed", map[string]interface{}{
						"endpoint":      m.cfg.Connection.Endpoint,
						"will_retry_in": "1s",
						"error":         err.Error(),
					})
					time.Sleep(time.Second)
					continue
				}

				m.client.Store(newClient)
				m.logInfo(ctx, "Successfully reconnected to MinIO", map[string]interface{}{
					"endpoint": m.cfg.Connection.Endpoint,
					"bucket":   m.cfg.Connection.BucketName,
				})
				continue outerLoop
			}
		}
	}
}

// GracefulShutdown stops the background goroutines. Safe to call more than
// once.
func (m *MinioClient) GracefulShutdown() {
	m.closeShutdownOnce.Do(func() {
		close(m.shutdownSignal)
	})
}

// WithObserver attaches an observer for operation tracking. Returns the
// client for chaining.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

// WithLogger attaches a logger for lifecycle and background logging. Returns
// the client for chaining.
func (m *MinioClient) WithLogger(logger Logger) *MinioClient {
	m.logger = logger
	return m
}

func (m *MinioClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (m *MinioClient) logWarn(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.WarnWithContext(ctx, msg, nil, fields)
	}
}

func (m *MinioClient) logError(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.ErrorWithContext(ctx, msg, nil, fields)
	}
}
