package embedding

import (
	"context"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/redis"
)

// FXModule wires the embedding system into Fx.
//
// It provides:
//   - *Config        (NewConfig)
//   - *Client        (NewClientWithDI)
//   - Lifecycle hook (RegisterEmbeddingLifecycle)
//
// A redis.Client in the container enables the read-through embedding cache;
// without one the client simply recomputes every embedding.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewConfig,       // -> *Config
		NewClientWithDI, // -> *Client
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// EmbeddingParams groups the dependencies needed to create a Client.
type EmbeddingParams struct {
	fx.In

	Config   *Config
	Redis    redis.Client           `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates an embedding client, attaching the cache and
// observer when they are available in the container.
func NewClientWithDI(p EmbeddingParams) (*Client, error) {
	client, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}

	if p.Redis != nil {
		client = client.WithCache(NewCache(p.Redis, p.Config.CacheTTL))
	}
	if p.Observer != nil {
		client = client.WithObserver(p.Observer)
	}

	return client, nil
}

// RegisterEmbeddingLifecycle ensures that the Client (and its provider)
// are properly cleaned up on application shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
