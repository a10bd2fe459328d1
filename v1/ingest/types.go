package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/contextra/ragcore/v1/store"
)

// Job is the queue payload describing one document to (re)ingest. The raw
// upload already sits in the blob store under ObjectKey; processing reads it
// back, chunks it, embeds the chunks and indexes them.
type Job struct {
	DocumentID string `json:"documentId"`
	OwnerID    string `json:"ownerId"`
	ObjectKey  string `json:"objectKey"`
	Title      string `json:"title,omitempty"`
}

// Status summarizes one owner's corpus: document and chunk counts from the
// relational store, plus the point count of the shared vector collection.
type Status struct {
	Documents          int64 `json:"documents"`
	ProcessedDocuments int64 `json:"processedDocuments"`
	Chunks             int64 `json:"chunks"`

	// IndexedPoints is the total number of vectors in the collection, across
	// all owners.
	IndexedPoints uint64 `json:"indexedPoints"`
}

// PartialIndexError reports how far an interrupted ingestion run got.
// Chunks listed in Indexed are already in the vector index and keep their
// vectors on retry; Remaining never made it in. Unwrap exposes the cause so
// faults classification still applies.
type PartialIndexError struct {
	DocumentID string
	Indexed    []string
	Remaining  []string
	Err        error
}

func (e *PartialIndexError) Error() string {
	return fmt.Sprintf("ingest: document %s: indexed %d of %d chunks: %v",
		e.DocumentID, len(e.Indexed), len(e.Indexed)+len(e.Remaining), e.Err)
}

func (e *PartialIndexError) Unwrap() error { return e.Err }

// DocumentStore is the slice of the document repository the ingestion
// service uses.
type DocumentStore interface {
	Create(ctx context.Context, doc *store.Document) error
	GetOwned(ctx context.Context, id, ownerID string) (*store.Document, error)
	SetStatus(ctx context.Context, id, status, errMsg string) error
	SetProcessed(ctx context.Context, id string, chunkCount int) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (total, processed int64, err error)
}

// ChunkStore is the slice of the chunk repository the ingestion service
// uses.
type ChunkStore interface {
	ReplaceForDocument(ctx context.Context, documentID string, chunks []store.DocumentChunk) error
	ByDocument(ctx context.Context, documentID string) ([]store.DocumentChunk, error)
	MarkIndexed(ctx context.Context, chunkIDs []string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// BlobStore holds raw document uploads.
type BlobStore interface {
	PutBytes(ctx context.Context, objectKey string, data []byte) (int64, error)
	Get(ctx context.Context, objectKey string) ([]byte, error)
	Delete(ctx context.Context, objectKey string) error
}

// Embedder turns chunk texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Publisher enqueues ingestion jobs.
type Publisher interface {
	Publish(ctx context.Context, msg []byte, headers ...map[string]interface{}) error
}

// ChunkID derives the deterministic chunk identifier for a document ordinal.
// Re-ingesting a document yields the same ids, so index upserts replace
// instead of duplicating.
func ChunkID(documentID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", documentID, ordinal))).String()
}
