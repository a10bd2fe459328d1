// Package vectordb defines the database-agnostic abstraction over vector
// similarity search used by the retrieval pipeline.
//
// Applications depend on Service, not on a concrete vector database, so the
// backing store (Qdrant today, pgvector tomorrow) can change without
// touching retrieval code:
//
//	func NewRetriever(index vectordb.Service) *Retriever {
//	    return &Retriever{index: index}
//	}
//
// The index stores only chunk identifiers, vectors and the metadata needed
// for filtering; chunk text lives in the relational store and is fetched by
// identifier after search.
package vectordb

import "context"

// Service is the common interface for all vector index implementations.
type Service interface {
	// EnsureCollection creates a collection with the given vector dimension
	// if it doesn't exist. Safe to call multiple times; a no-op when the
	// collection is already present.
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error

	// Upsert writes entries into a collection, replacing any entry with the
	// same chunk identifier. Returns the number of entries written.
	Upsert(ctx context.Context, collection string, entries []IndexEntry) (int, error)

	// Search performs similarity search across one or more requests and
	// returns one result slice per request, each ordered by descending
	// similarity.
	Search(ctx context.Context, requests ...SearchRequest) ([][]SearchResult, error)

	// DeleteChunks removes entries by chunk identifier.
	DeleteChunks(ctx context.Context, collection string, chunkIDs []string) error

	// DeleteDocument removes every entry belonging to a document, so a
	// deleted document leaves no orphaned vectors behind.
	DeleteDocument(ctx context.Context, collection string, documentID string) error

	// GetCollection retrieves metadata about a collection.
	GetCollection(ctx context.Context, name string) (*Collection, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)
}
