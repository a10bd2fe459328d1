package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/logger"
	"github.com/contextra/ragcore/v1/observability"
)

// FXModule defines the Fx module for the metrics package.
//
// It provides *Metrics both as itself and as observability.Observer, so
// backend clients declaring an optional Observer dependency automatically
// report into Prometheus, and registers the lifecycle of the /metrics HTTP
// server.
var FXModule = fx.Module("metrics",
	fx.Provide(
		fx.Annotate(
			NewMetrics,
			fx.As(new(observability.Observer)),
			fx.As(fx.Self()),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle starts the Prometheus HTTP server on application
// start and shuts it down gracefully on stop.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
