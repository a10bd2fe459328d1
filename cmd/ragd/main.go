// Command ragd runs the retrieval pipeline daemon: the ingestion worker
// consuming document jobs from RabbitMQ, and the retrieval, assembly and
// chat services wired on top of Postgres, Qdrant, Redis and MinIO.
package main

import (
	"context"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/assembler"
	"github.com/contextra/ragcore/v1/chat"
	"github.com/contextra/ragcore/v1/chunker"
	"github.com/contextra/ragcore/v1/embedding"
	"github.com/contextra/ragcore/v1/ingest"
	"github.com/contextra/ragcore/v1/llm"
	"github.com/contextra/ragcore/v1/logger"
	"github.com/contextra/ragcore/v1/metrics"
	"github.com/contextra/ragcore/v1/minio"
	"github.com/contextra/ragcore/v1/postgres"
	"github.com/contextra/ragcore/v1/qdrant"
	"github.com/contextra/ragcore/v1/rabbit"
	"github.com/contextra/ragcore/v1/redis"
	"github.com/contextra/ragcore/v1/retriever"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/tracer"
	"github.com/contextra/ragcore/v1/vectordb"
)

func main() {
	app := fx.New(
		// Environment-driven configuration for the modules that don't
		// provide their own.
		fx.Provide(
			logger.NewConfig,
			metrics.NewConfig,
			postgres.NewConfig,
			redis.NewConfig,
			qdrant.NewConfig,
			minio.NewConfig,
			rabbit.NewConfig,
		),

		// The house logger behind the narrow interfaces the clients accept.
		fx.Provide(
			func(l *logger.Logger) minio.Logger { return l },
			func(l *logger.Logger) rabbit.Logger { return l },
			func(l *logger.Logger) ingest.Logger { return l },
		),

		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,

		postgres.FXModule,
		redis.FXModule,
		qdrant.FXModule,
		minio.FXModule,
		rabbit.FXModule,
		store.FXModule,

		chunker.FXModule,
		embedding.FXModule,
		llm.FXModule,
		assembler.FXModule,
		retriever.FXModule,
		ingest.FXModule,
		ingest.WorkerFXModule,
		chat.FXModule,

		fx.Invoke(registerCollectionSetup),
	)

	app.Run()
}

// registerCollectionSetup creates the vector collection on startup if it is
// missing, sized to the configured embedding dimension.
func registerCollectionSetup(
	lc fx.Lifecycle,
	index vectordb.Service,
	embedder *embedding.Client,
	cfg ingest.Config,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := index.EnsureCollection(ctx, cfg.Collection, uint64(embedder.Dimension())); err != nil {
				return err
			}
			log.Info("vector collection ready", nil, map[string]interface{}{
				"collection": cfg.Collection,
				"dimension":  embedder.Dimension(),
			})
			return nil
		},
	})
}
