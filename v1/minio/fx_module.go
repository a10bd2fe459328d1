package minio

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
)

// FXModule is an fx module that provides the blob store client. It registers
// the constructor for dependency injection and sets up lifecycle hooks for
// connection monitoring and graceful shutdown.
var FXModule = fx.Module("minio",
	fx.Provide(
		fx.Annotate(
			NewClientWithDI,
			fx.As(new(Client)),
			fx.As(fx.Self()),
		),
	),
	fx.Invoke(RegisterMinioLifecycle),
)

// MinioParams groups the dependencies needed to create the blob store client.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new blob store client using dependency injection.
func NewClientWithDI(params MinioParams) (*MinioClient, error) {
	if params.Logger != nil {
		params.Config = params.Config.WithLogger(params.Logger)
	}

	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Observer != nil {
		client = client.WithObserver(params.Observer)
	}
	return client, nil
}

// MinioLifeCycleParams groups the dependencies needed for lifecycle
// management.
type MinioLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *MinioClient
}

// RegisterMinioLifecycle starts connection monitoring on application start
// and shuts the client down on stop.
func RegisterMinioLifecycle(params MinioLifeCycleParams) {
	wg := &sync.WaitGroup{}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Client.MonitorConnection(context.Background())
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Client.RetryConnection(context.Background())
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.GracefulShutdown()
			wg.Wait()
			return nil
		},
	})
}
