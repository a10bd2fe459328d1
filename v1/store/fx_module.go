package store

import (
	"context"

	"go.uber.org/fx"

	"github.com/contextra/ragcore/v1/postgres"
	"github.com/contextra/ragcore/v1/retriever"
)

// FXModule is an fx module that provides the persistence repositories and
// runs schema migration on startup. The chunk repository is additionally
// exposed as the retriever's chunk text lookup.
var FXModule = fx.Module("store",
	fx.Provide(
		NewDocumentRepository,
		NewSessionRepository,
		fx.Annotate(
			NewChunkRepository,
			fx.As(new(retriever.ChunkLookup)),
			fx.As(fx.Self()),
		),
	),
	fx.Invoke(RegisterMigration),
)

// MigrationParams groups the dependencies needed to migrate the schema.
type MigrationParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *postgres.Postgres
}

// RegisterMigration migrates the schema when the application starts.
func RegisterMigration(params MigrationParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return params.Postgres.AutoMigrate(Models()...)
		},
	})
}
