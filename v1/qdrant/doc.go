// Package qdrant provides a modular, dependency-injected client for the Qdrant vector database.
//
// The package backs the document retrieval pipeline: chunk embeddings are
// stored here together with the filtering metadata (owner, document, ordinal,
// ingestion time) needed to scope similarity searches. It integrates with the
// fx dependency injection framework and supports builder-style configuration.
//
// # Core Features
//
//   - Managed Qdrant client lifecycle with Fx integration
//   - Config struct supporting environment loading
//   - Automatic health checks on client initialization
//   - Safe, batched insertion of chunk embeddings
//   - Database-agnostic interface via vectordb.Service
//   - Owner/document/ingestion-time filtering and score thresholds
//   - Deletion by chunk id or by whole document
//
// # Basic Usage
//
//	import (
//	    "github.com/contextra/ragcore/v1/qdrant"
//	    "github.com/contextra/ragcore/v1/vectordb"
//	)
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: &qdrant.Config{
//	        Endpoint: "localhost",
//	        Port:     6334,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var db vectordb.Service = client
//	err = db.EnsureCollection(ctx, "documents", 1536)
//
// # Fx Integration
//
//	app := fx.New(
//	    fx.Provide(qdrant.NewConfig),
//	    qdrant.FXModule,
//	    fx.Invoke(func(db vectordb.Service) {
//	        // use db
//	    }),
//	)
package qdrant
