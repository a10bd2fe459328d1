package qdrant

import (
	"context"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/vectordb"
)

// FXModule wires the Qdrant client into Fx.
//
// It provides:
//   - *QdrantClient    (NewQdrantClient)
//   - vectordb.Service (the same client behind the interface)
//
// Dependencies required by this module:
//   - *qdrant.Config in the dependency container
//   - optionally an observability.Observer for operation metrics
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		fx.Annotate(
			ProvideService,
			fx.As(new(vectordb.Service)),
		),
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams groups the dependencies needed to create a QdrantClient.
type QdrantParams struct {
	fx.In

	Config   *Config
	Observer observability.Observer `optional:"true"`
}

// ProvideService exposes the concrete client as the vectordb.Service
// interface, so application code can stay database-agnostic.
func ProvideService(c *QdrantClient) *QdrantClient {
	return c
}

// RegisterQdrantLifecycle releases client resources on application shutdown.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
