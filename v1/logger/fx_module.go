package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the logger into an Fx application.
//
// It provides the NewLoggerClient factory and registers a shutdown hook that
// flushes any buffered log entries before the application terminates.
//
// Dependencies required by this module:
//   - A logger.Config instance must be available in the dependency container.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger on
// application shutdown so that no buffered entries are lost.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Zap.Sync() // flushes any buffered logs
		},
	})
}
