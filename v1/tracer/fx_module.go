package tracer

import (
	"context"
	"log"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the tracer package.
//
// It provides the tracer client and registers a shutdown hook so pending
// spans are flushed to the collector when the application stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers the shutdown hook for the tracer with
// the FX lifecycle. A disabled tracer has no provider and nothing to flush.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: shutting down tracer...")
			if tracer.tracer == nil {
				log.Println("INFO: tracer is nil, skipping shutdown")
				return nil
			}
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
