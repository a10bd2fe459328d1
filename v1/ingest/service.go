package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contextra/ragcore/v1/chunker"
	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/vectordb"
)

// Service runs the document ingestion pipeline: uploads land in the blob
// store and are queued; processing chunks the text, embeds the chunks and
// writes them to the vector index and the relational store.
type Service struct {
	cfg      Config
	docs     DocumentStore
	chunks   ChunkStore
	blobs    BlobStore
	splitter *chunker.Splitter
	embedder Embedder
	index    vectordb.Service
	queue    Publisher
	observer observability.Observer
}

// NewService validates the configuration and returns an ingestion Service.
// Without a queue attached, Upload and Reingest process documents inline.
func NewService(
	cfg Config,
	docs DocumentStore,
	chunks ChunkStore,
	blobs BlobStore,
	splitter *chunker.Splitter,
	embedder Embedder,
	index vectordb.Service,
) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		cfg:      cfg,
		docs:     docs,
		chunks:   chunks,
		blobs:    blobs,
		splitter: splitter,
		embedder: embedder,
		index:    index,
	}, nil
}

// WithQueue attaches a job publisher. Returns the service for chaining.
func (s *Service) WithQueue(queue Publisher) *Service {
	s.queue = queue
	return s
}

// WithObserver attaches an observer. Returns the service for chaining.
func (s *Service) WithObserver(observer observability.Observer) *Service {
	s.observer = observer
	return s
}

// Upload stores a raw document, creates its pending row and enqueues the
// ingestion job. The returned document is still unprocessed; retrieval sees
// its chunks only after the job completes.
func (s *Service) Upload(ctx context.Context, ownerID, title string, content []byte) (*store.Document, error) {
	start := time.Now()

	if ownerID == "" {
		return nil, faults.NewValidationError("ownerId", "cannot be empty")
	}
	if len(content) == 0 {
		return nil, faults.NewValidationError("content", "cannot be empty")
	}
	if int64(len(content)) > s.cfg.MaxDocumentBytes {
		return nil, faults.NewValidationError("content", fmt.Sprintf("exceeds %d bytes", s.cfg.MaxDocumentBytes))
	}

	doc := &store.Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    store.DocumentStatusPending,
		ObjectKey: fmt.Sprintf("uploads/%s/%s", ownerID, uuid.NewString()),
	}

	if _, err := s.blobs.PutBytes(ctx, doc.ObjectKey, content); err != nil {
		return nil, fmt.Errorf("ingest: store upload: %w", err)
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingest: create document: %w", err)
	}

	err := s.enqueue(ctx, Job{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		ObjectKey:  doc.ObjectKey,
		Title:      doc.Title,
	})
	s.observe("upload", doc.ID, time.Since(start), err, int64(len(content)), nil)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ProcessDocument runs the pipeline for one queued job. On failure the
// document is marked failed with the error recorded; previously indexed
// chunks of the document stay searchable until a later run replaces them.
func (s *Service) ProcessDocument(ctx context.Context, job Job) error {
	start := time.Now()

	if err := s.docs.SetStatus(ctx, job.DocumentID, store.DocumentStatusProcessing, ""); err != nil {
		return err
	}

	chunkCount, err := s.process(ctx, job)
	s.observe("process", job.DocumentID, time.Since(start), err, int64(chunkCount), map[string]interface{}{
		"owner_id": job.OwnerID,
	})
	if err != nil {
		if statusErr := s.docs.SetStatus(ctx, job.DocumentID, store.DocumentStatusFailed, err.Error()); statusErr != nil {
			return fmt.Errorf("ingest: record failure of document %s: %w", job.DocumentID, statusErr)
		}
		return err
	}
	return s.docs.SetProcessed(ctx, job.DocumentID, chunkCount)
}

func (s *Service) process(ctx context.Context, job Job) (int, error) {
	data, err := s.blobs.Get(ctx, job.ObjectKey)
	if err != nil {
		return 0, fmt.Errorf("ingest: fetch upload %s: %w", job.ObjectKey, err)
	}

	pieces := s.splitter.Split(string(data))

	previous, err := s.chunks.ByDocument(ctx, job.DocumentID)
	if err != nil {
		return 0, fmt.Errorf("ingest: load previous chunks of document %s: %w", job.DocumentID, err)
	}

	if len(pieces) == 0 {
		// An empty document clears its previous chunk set.
		if err := s.index.DeleteDocument(ctx, s.cfg.Collection, job.DocumentID); err != nil {
			return 0, fmt.Errorf("ingest: clear index for document %s: %w", job.DocumentID, err)
		}
		if err := s.chunks.ReplaceForDocument(ctx, job.DocumentID, nil); err != nil {
			return 0, err
		}
		return 0, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Text
	}

	now := time.Now().UTC()
	entries := make([]vectordb.IndexEntry, len(pieces))
	rows := make([]store.DocumentChunk, len(pieces))
	for i, p := range pieces {
		id := ChunkID(job.DocumentID, p.Ordinal)
		entries[i] = vectordb.IndexEntry{
			ChunkID:    id,
			DocumentID: job.DocumentID,
			OwnerID:    job.OwnerID,
			Ordinal:    p.Ordinal,
			CreatedAt:  now,
		}
		rows[i] = store.DocumentChunk{
			ID:          id,
			DocumentID:  job.DocumentID,
			OwnerID:     job.OwnerID,
			Ordinal:     p.Ordinal,
			StartOffset: p.Start,
			EndOffset:   p.End,
			Text:        p.Text,
			Indexed:     true,
		}
	}

	// Embed and upsert batch by batch. Deterministic chunk ids overwrite
	// the previous vectors in place, so the document's prior index state
	// survives any mid-run failure, and completed batches keep their
	// vectors for the retry.
	indexed := 0
	for start := 0; start < len(entries); start += s.cfg.IndexBatchSize {
		end := min(start+s.cfg.IndexBatchSize, len(entries))

		vectors, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return indexed, partialError(job.DocumentID, rows, indexed, fmt.Errorf("embed: %w", err))
		}
		for i, v := range vectors {
			entries[start+i].Vector = v
		}
		if _, err := s.index.Upsert(ctx, s.cfg.Collection, entries[start:end]); err != nil {
			return indexed, partialError(job.DocumentID, rows, indexed, fmt.Errorf("index upsert: %w", err))
		}
		indexed = end
	}

	// The full new set is indexed; only now do the old rows and any
	// ordinals past the new length go away.
	if stale := staleChunkIDs(previous, rows); len(stale) > 0 {
		if err := s.index.DeleteChunks(ctx, s.cfg.Collection, stale); err != nil {
			return indexed, fmt.Errorf("ingest: drop stale chunks of document %s: %w", job.DocumentID, err)
		}
	}
	if err := s.chunks.ReplaceForDocument(ctx, job.DocumentID, rows); err != nil {
		return indexed, err
	}

	return len(rows), nil
}

// partialError wraps a mid-run failure with the per-chunk progress report:
// ids up to indexed are in the vector index, the rest are not.
func partialError(documentID string, rows []store.DocumentChunk, indexed int, err error) error {
	pe := &PartialIndexError{DocumentID: documentID, Err: err}
	for i, r := range rows {
		if i < indexed {
			pe.Indexed = append(pe.Indexed, r.ID)
		} else {
			pe.Remaining = append(pe.Remaining, r.ID)
		}
	}
	return pe
}

// staleChunkIDs returns ids of previously stored chunks that are not part
// of the new chunk set, i.e. ordinals a shrinking re-ingestion orphaned.
func staleChunkIDs(previous, current []store.DocumentChunk) []string {
	if len(previous) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(current))
	for _, c := range current {
		keep[c.ID] = struct{}{}
	}
	var stale []string
	for _, c := range previous {
		if _, ok := keep[c.ID]; !ok {
			stale = append(stale, c.ID)
		}
	}
	return stale
}

// DeleteDocument removes a document everywhere: vector index first, then
// the relational rows, then the raw upload.
func (s *Service) DeleteDocument(ctx context.Context, documentID, ownerID string) error {
	start := time.Now()

	doc, err := s.docs.GetOwned(ctx, documentID, ownerID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteDocument(ctx, s.cfg.Collection, doc.ID); err != nil {
		return fmt.Errorf("ingest: remove document %s from index: %w", doc.ID, err)
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if doc.ObjectKey != "" {
		if err := s.blobs.Delete(ctx, doc.ObjectKey); err != nil {
			return fmt.Errorf("ingest: remove upload %s: %w", doc.ObjectKey, err)
		}
	}

	s.observe("delete", doc.ID, time.Since(start), nil, 0, nil)
	return nil
}

// Reingest re-queues an existing document for processing. Chunk ids are
// deterministic, so the run replaces the previous chunk set.
func (s *Service) Reingest(ctx context.Context, documentID, ownerID string) error {
	doc, err := s.docs.GetOwned(ctx, documentID, ownerID)
	if err != nil {
		return err
	}
	if err := s.docs.SetStatus(ctx, doc.ID, store.DocumentStatusPending, ""); err != nil {
		return err
	}
	return s.enqueue(ctx, Job{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		ObjectKey:  doc.ObjectKey,
		Title:      doc.Title,
	})
}

// Status reports the size of one owner's corpus.
func (s *Service) Status(ctx context.Context, ownerID string) (Status, error) {
	if ownerID == "" {
		return Status{}, faults.NewValidationError("ownerId", "cannot be empty")
	}

	total, processed, err := s.docs.CountByOwner(ctx, ownerID)
	if err != nil {
		return Status{}, err
	}
	chunkCount, err := s.chunks.CountByOwner(ctx, ownerID)
	if err != nil {
		return Status{}, err
	}
	collection, err := s.index.GetCollection(ctx, s.cfg.Collection)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Documents:          total,
		ProcessedDocuments: processed,
		Chunks:             chunkCount,
		IndexedPoints:      collection.Points,
	}, nil
}

// enqueue publishes the job, or processes it inline when no queue is
// attached.
func (s *Service) enqueue(ctx context.Context, job Job) error {
	if s.queue == nil {
		return s.ProcessDocument(ctx, job)
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("ingest: marshal job: %w", err)
	}
	if err := s.queue.Publish(ctx, payload); err != nil {
		return fmt.Errorf("ingest: enqueue document %s: %w", job.DocumentID, err)
	}
	return nil
}

func (s *Service) observe(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component: "ingest",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
