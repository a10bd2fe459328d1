package minio

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Logger is the minimal logging surface the blob store needs. The house
// logger satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Connection holds the MinIO connection parameters.
type Connection struct {
	// Endpoint is the host:port of the MinIO server.
	Endpoint string

	// AccessKeyID is the access key for authentication.
	AccessKeyID string

	// SecretAccessKey is the secret key for authentication.
	SecretAccessKey string

	// BucketName is the bucket holding raw document uploads.
	BucketName string

	// Region is the bucket region.
	Region string

	// UseSSL enables TLS for the connection.
	UseSSL bool

	// CreateBucket allows the client to create the bucket if it is missing.
	CreateBucket bool
}

// Config holds the configuration for the blob store client.
type Config struct {
	Connection Connection
	Logger     Logger
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Endpoint:     "localhost:9000",
			AccessKeyID:  "minioadmin",
			BucketName:   "documents",
			CreateBucket: true,
		},
	}
}

// NewConfig creates a Config from environment variables, falling back to
// defaults for unset values:
//   - MINIO_ENDPOINT
//   - MINIO_ACCESS_KEY_ID
//   - MINIO_SECRET_ACCESS_KEY
//   - MINIO_BUCKET_NAME
//   - MINIO_REGION
//   - MINIO_USE_SSL
//   - MINIO_CREATE_BUCKET
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Connection.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY_ID"); v != "" {
		cfg.Connection.AccessKeyID = v
	}
	if v := os.Getenv("MINIO_SECRET_ACCESS_KEY"); v != "" {
		cfg.Connection.SecretAccessKey = v
	}
	if v := os.Getenv("MINIO_BUCKET_NAME"); v != "" {
		cfg.Connection.BucketName = v
	}
	if v := os.Getenv("MINIO_REGION"); v != "" {
		cfg.Connection.Region = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Connection.UseSSL = b
		}
	}
	if v := os.Getenv("MINIO_CREATE_BUCKET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Connection.CreateBucket = b
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Connection.Endpoint == "" {
		return fmt.Errorf("minio: endpoint cannot be empty")
	}
	if c.Connection.BucketName == "" {
		return fmt.Errorf("minio: bucket name cannot be empty")
	}
	return nil
}

// WithLogger returns a copy of the config with the logger set.
func (c Config) WithLogger(logger Logger) Config {
	c.Logger = logger
	return c
}
