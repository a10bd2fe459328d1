package rabbit

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
)

// FXModule is an fx module that provides the RabbitMQ client for the
// ingestion job queue. It registers the constructor for dependency
// injection and sets up lifecycle hooks for connection monitoring and
// graceful shutdown.
var FXModule = fx.Module("rabbit",
	fx.Provide(
		fx.Annotate(
			NewClientWithDI,
			fx.As(new(Client)),
			fx.As(fx.Self()),
		),
	),
	fx.Invoke(RegisterRabbitLifecycle),
)

// RabbitParams groups the dependencies needed to create the queue client.
type RabbitParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new RabbitMQ client using dependency injection.
func NewClientWithDI(params RabbitParams) (*RabbitClient, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		client = client.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		client = client.WithObserver(params.Observer)
	}

	return client, nil
}

// RabbitLifecycleParams groups the dependencies needed for lifecycle
// management.
type RabbitLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RabbitClient
	Config    Config
}

// RegisterRabbitLifecycle launches the reconnection loop on application
// start and shuts the client down on stop.
func RegisterRabbitLifecycle(params RabbitLifecycleParams) {
	wg := &sync.WaitGroup{}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func(cfg Config) {
				defer wg.Done()
				params.Client.RetryConnection(cfg)
			}(params.Config)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.GracefulShutdown()
			wg.Wait()
			return nil
		},
	})
}
