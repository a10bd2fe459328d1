package redis

import (
	"context"
	"log"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/observability"
)

// FXModule is an fx.Module that provides and configures the Redis client.
//
// The module:
//  1. Provides the Redis client factory function
//  2. Exposes the client behind the Client interface
//  3. Invokes the lifecycle registration to manage the client's lifecycle
//
// Usage:
//
//	app := fx.New(
//	    fx.Provide(redis.NewConfig),
//	    redis.FXModule,
//	    // other modules...
//	)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *RedisClient) *RedisClient { return c },
			fx.As(new(Client)),
		),
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies needed to create a Redis client
type RedisParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new Redis client using dependency injection.
// The optional logger and observer are injected before delegating to the
// standard NewClient function.
func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
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

// RedisLifecycleParams groups the dependencies needed for Redis lifecycle management
type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RedisClient
}

// RegisterRedisLifecycle registers the Redis client with the fx lifecycle
// system.
//
// The function:
//  1. On application start: Pings Redis to ensure the connection is healthy
//  2. On application stop: Closes the client connections cleanly
func RegisterRedisLifecycle(params RedisLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				log.Printf("WARN: Failed to ping Redis on startup: %v", err)
				return err
			}
			log.Println("INFO: Redis client started and healthy")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: Shutting down Redis client")
			return params.Client.Close()
		},
	})
}
