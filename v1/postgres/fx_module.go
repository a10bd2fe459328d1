package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule is an fx module that provides the Postgres database component.
// It registers the Postgres constructor for dependency injection and sets up
// lifecycle hooks for connection monitoring and graceful shutdown.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgresClientWithDI,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies needed to create a Postgres client.
type PostgresParams struct {
	fx.In

	Config Config
}

// NewPostgresClientWithDI creates a new Postgres client using dependency
// injection.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config)
}

// PostgresLifeCycleParams groups the dependencies needed for Postgres
// lifecycle management.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle registers lifecycle hooks for the Postgres
// database component:
//  1. Connection monitoring on application start
//  2. Automatic reconnection on failure
//  3. Graceful shutdown of connections on application stop
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(context.Background())
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(context.Background())
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := params.Postgres.GracefulShutdown()
			wg.Wait()
			return err
		},
	})
}
