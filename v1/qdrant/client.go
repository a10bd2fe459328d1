package qdrant

import (
	"context"
	"fmt"
	"log"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/contextra/ragcore/v1/observability"
)

// QdrantClient wraps the official Qdrant Go client and implements
// vectordb.Service for document-chunk embeddings.
//
// Responsibilities:
//   - Establish and validate connectivity with Qdrant.
//   - Manage the chunk collection (create if missing, cosine distance).
//   - Upsert, search, and delete chunk embeddings with owner/document
//     filtering.
//   - Offer a safe API suitable for Fx dependency injection.
type QdrantClient struct {
	api      *qdrant.Client
	cfg      *Config
	observer observability.Observer
	started  bool
}

const (
	defaultBatchSize = 200 // chunk size for batch upserts
)

// NewQdrantClient constructs a new QdrantClient and validates connectivity
// via a health check. The Qdrant Go SDK creates lightweight gRPC
// connections, so this performs an immediate health check to fail fast if
// the service is unreachable.
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	log.Printf("[Qdrant] Connecting to endpoint: %s:%d", p.Config.Endpoint, p.Config.Port)

	port := p.Config.Port
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   p.Config.Endpoint,
		Port:                   port,
		APIKey:                 p.Config.ApiKey,
		SkipCompatibilityCheck: !p.Config.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := &QdrantClient{
		api:      client,
		cfg:      p.Config,
		observer: p.Observer,
		started:  true,
	}

	if err := qc.healthCheck(); err != nil {
		return nil, fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Println("[Qdrant] Client connected successfully")
	return qc, nil
}

// healthCheck verifies the availability of the Qdrant service.
// Lightweight and fast; used during startup and readiness probes.
func (c *QdrantClient) healthCheck() error {
	if !c.started || c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Printf("[Qdrant] Health check passed (title=%s, version=%s, endpoint=%s)",
		resp.Title, resp.Version, c.cfg.Endpoint)
	return nil
}

// Collection returns the configured chunk collection name.
func (c *QdrantClient) Collection() string {
	return c.cfg.Collection
}

// Client returns the underlying Qdrant SDK client for direct access to
// low-level operations.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// observe reports an operation to the configured observer, if any.
func (c *QdrantClient) observe(operation, resource, subResource string, start time.Time, err error, size int64) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "qdrant",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
	})
}

// Close gracefully shuts down the Qdrant client.
//
// The official Qdrant Go SDK doesn't maintain persistent connections, so
// this is currently a no-op. It exists for lifecycle symmetry.
func (c *QdrantClient) Close() error {
	if !c.started {
		return nil
	}

	log.Println("[Qdrant] closing client (no-op)")
	return nil
}
