package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextra/ragcore/v1/chunker"
	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/store"
	"github.com/contextra/ragcore/v1/vectordb"
)

type fakeDocs struct {
	docs map[string]*store.Document
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]*store.Document{}}
}

func (f *fakeDocs) Create(_ context.Context, doc *store.Document) error {
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocs) GetOwned(_ context.Context, id, ownerID string) (*store.Document, error) {
	doc, ok := f.docs[id]
	if !ok || doc.OwnerID != ownerID {
		return nil, fmt.Errorf("document %s: not found", id)
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDocs) SetStatus(_ context.Context, id, status, errMsg string) error {
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s: not found", id)
	}
	doc.Status = status
	doc.Error = errMsg
	return nil
}

func (f *fakeDocs) SetProcessed(_ context.Context, id string, chunkCount int) error {
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("document %s: not found", id)
	}
	doc.Status = store.DocumentStatusProcessed
	doc.ChunkCount = chunkCount
	doc.Error = ""
	return nil
}

func (f *fakeDocs) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeDocs) CountByOwner(_ context.Context, ownerID string) (int64, int64, error) {
	var total, processed int64
	for _, doc := range f.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		total++
		if doc.Status == store.DocumentStatusProcessed {
			processed++
		}
	}
	return total, processed, nil
}

type fakeChunks struct {
	byDocument map[string][]store.DocumentChunk
}

func newFakeChunks() *fakeChunks {
	return &fakeChunks{byDocument: map[string][]store.DocumentChunk{}}
}

func (f *fakeChunks) ReplaceForDocument(_ context.Context, documentID string, chunks []store.DocumentChunk) error {
	f.byDocument[documentID] = append([]store.DocumentChunk{}, chunks...)
	return nil
}

func (f *fakeChunks) ByDocument(_ context.Context, documentID string) ([]store.DocumentChunk, error) {
	return append([]store.DocumentChunk{}, f.byDocument[documentID]...), nil
}

func (f *fakeChunks) MarkIndexed(context.Context, []string) error { return nil }

func (f *fakeChunks) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	var n int64
	for _, set := range f.byDocument {
		for _, c := range set {
			if c.OwnerID == ownerID {
				n++
			}
		}
	}
	return n, nil
}

type fakeBlobs struct {
	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) PutBytes(_ context.Context, objectKey string, data []byte) (int64, error) {
	f.objects[objectKey] = append([]byte{}, data...)
	return int64(len(data)), nil
}

func (f *fakeBlobs) Get(_ context.Context, objectKey string) ([]byte, error) {
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("object %s: not found", objectKey)
	}
	return data, nil
}

func (f *fakeBlobs) Delete(_ context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	return nil
}

type fakeEmbedder struct {
	err          error
	succeedCalls int
	calls        int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil && f.calls > f.succeedCalls {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1, 0, 0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return 4 }

type fakeIndex struct {
	entries map[string]vectordb.IndexEntry
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]vectordb.IndexEntry{}}
}

func (f *fakeIndex) EnsureCollection(context.Context, string, uint64) error { return nil }

func (f *fakeIndex) Upsert(_ context.Context, _ string, entries []vectordb.IndexEntry) (int, error) {
	for _, e := range entries {
		f.entries[e.ChunkID] = e
	}
	return len(entries), nil
}

func (f *fakeIndex) Search(context.Context, ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	return nil, nil
}

func (f *fakeIndex) DeleteChunks(_ context.Context, _ string, chunkIDs []string) error {
	for _, id := range chunkIDs {
		delete(f.entries, id)
	}
	return nil
}

func (f *fakeIndex) DeleteDocument(_ context.Context, _ string, documentID string) error {
	for id, e := range f.entries {
		if e.DocumentID == documentID {
			delete(f.entries, id)
		}
	}
	return nil
}

func (f *fakeIndex) GetCollection(context.Context, string) (*vectordb.Collection, error) {
	return &vectordb.Collection{Points: uint64(len(f.entries))}, nil
}

func (f *fakeIndex) ListCollections(context.Context) ([]string, error) { return nil, nil }

type fakeQueue struct {
	published [][]byte
}

func (f *fakeQueue) Publish(_ context.Context, msg []byte, _ ...map[string]interface{}) error {
	f.published = append(f.published, append([]byte{}, msg...))
	return nil
}

type testPipeline struct {
	svc      *Service
	docs     *fakeDocs
	chunks   *fakeChunks
	blobs    *fakeBlobs
	embedder *fakeEmbedder
	index    *fakeIndex
}

func newTestPipeline(t *testing.T) *testPipeline {
	return newTestPipelineCfg(t, DefaultConfig())
}

func newTestPipelineCfg(t *testing.T, cfg Config) *testPipeline {
	t.Helper()

	splitter, err := chunker.NewSplitter(chunker.Config{ChunkSize: 40, Overlap: 10})
	require.NoError(t, err)

	p := &testPipeline{
		docs:     newFakeDocs(),
		chunks:   newFakeChunks(),
		blobs:    newFakeBlobs(),
		embedder: &fakeEmbedder{},
		index:    newFakeIndex(),
	}
	p.svc, err = NewService(cfg, p.docs, p.chunks, p.blobs, splitter, p.embedder, p.index)
	require.NoError(t, err)
	return p
}

func TestUpload_EnqueuesJob(t *testing.T) {
	p := newTestPipeline(t)
	queue := &fakeQueue{}
	p.svc = p.svc.WithQueue(queue)

	doc, err := p.svc.Upload(context.Background(), "owner-1", "notes", []byte("some text"))
	require.NoError(t, err)

	assert.Equal(t, store.DocumentStatusPending, p.docs.docs[doc.ID].Status)
	assert.Equal(t, []byte("some text"), p.blobs.objects[doc.ObjectKey])

	require.Len(t, queue.published, 1)
	var job Job
	require.NoError(t, json.Unmarshal(queue.published[0], &job))
	assert.Equal(t, doc.ID, job.DocumentID)
	assert.Equal(t, "owner-1", job.OwnerID)
	assert.Equal(t, doc.ObjectKey, job.ObjectKey)
}

func TestUpload_ValidatesInput(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.svc.Upload(context.Background(), "", "t", []byte("x"))
	assert.True(t, faults.IsValidation(err))

	_, err = p.svc.Upload(context.Background(), "owner-1", "t", nil)
	assert.True(t, faults.IsValidation(err))

	big := make([]byte, DefaultMaxDocumentBytes+1)
	_, err = p.svc.Upload(context.Background(), "owner-1", "t", big)
	assert.True(t, faults.IsValidation(err))
}

func TestUpload_ProcessesInlineWithoutQueue(t *testing.T) {
	p := newTestPipeline(t)

	doc, err := p.svc.Upload(context.Background(), "owner-1", "notes", []byte("hello world"))
	require.NoError(t, err)

	assert.Equal(t, store.DocumentStatusProcessed, p.docs.docs[doc.ID].Status)
	assert.NotEmpty(t, p.chunks.byDocument[doc.ID])
}

func TestProcessDocument_IndexesChunks(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	text := strings.Repeat("The cat sat on the mat. ", 8)
	doc, err := p.svc.Upload(ctx, "owner-1", "cats", []byte(text))
	require.NoError(t, err)

	got := p.docs.docs[doc.ID]
	assert.Equal(t, store.DocumentStatusProcessed, got.Status)
	require.Greater(t, got.ChunkCount, 1)

	rows := p.chunks.byDocument[doc.ID]
	require.Len(t, rows, got.ChunkCount)
	assert.Len(t, p.index.entries, got.ChunkCount)

	for i, row := range rows {
		assert.Equal(t, ChunkID(doc.ID, i), row.ID)
		assert.Equal(t, i, row.Ordinal)
		assert.Equal(t, "owner-1", row.OwnerID)
		assert.True(t, row.Indexed)
		assert.NotEmpty(t, row.Text)

		entry, ok := p.index.entries[row.ID]
		require.True(t, ok, "chunk %s missing from index", row.ID)
		assert.Equal(t, doc.ID, entry.DocumentID)
		assert.Equal(t, i, entry.Ordinal)
		assert.Len(t, entry.Vector, 4)
	}
}

func TestProcessDocument_IsIdempotent(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	text := strings.Repeat("Alpha beta gamma delta. ", 6)
	doc, err := p.svc.Upload(ctx, "owner-1", "greek", []byte(text))
	require.NoError(t, err)

	firstCount := p.docs.docs[doc.ID].ChunkCount
	firstIDs := make([]string, 0, firstCount)
	for _, row := range p.chunks.byDocument[doc.ID] {
		firstIDs = append(firstIDs, row.ID)
	}

	require.NoError(t, p.svc.Reingest(ctx, doc.ID, "owner-1"))

	assert.Equal(t, firstCount, p.docs.docs[doc.ID].ChunkCount)
	assert.Len(t, p.index.entries, firstCount)
	for i, row := range p.chunks.byDocument[doc.ID] {
		assert.Equal(t, firstIDs[i], row.ID)
	}
}

func TestProcessDocument_ShrinkingReingestLeavesNoOrphans(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte(strings.Repeat("A long sentence goes here. ", 8)))
	require.NoError(t, err)
	require.Greater(t, p.docs.docs[doc.ID].ChunkCount, 1)

	// Replace the upload with a much shorter text and re-ingest.
	_, err = p.blobs.PutBytes(ctx, doc.ObjectKey, []byte("short"))
	require.NoError(t, err)
	require.NoError(t, p.svc.Reingest(ctx, doc.ID, "owner-1"))

	assert.Equal(t, 1, p.docs.docs[doc.ID].ChunkCount)
	assert.Len(t, p.index.entries, 1)
	assert.Len(t, p.chunks.byDocument[doc.ID], 1)
}

func TestProcessDocument_EmbedderFailureMarksFailed(t *testing.T) {
	p := newTestPipeline(t)
	queue := &fakeQueue{}
	p.svc = p.svc.WithQueue(queue)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte("some text to embed"))
	require.NoError(t, err)

	p.embedder.err = fmt.Errorf("embeddings: %w", faults.ErrBackendUnavailable)

	var job Job
	require.NoError(t, json.Unmarshal(queue.published[0], &job))
	err = p.svc.ProcessDocument(ctx, job)
	require.Error(t, err)
	assert.True(t, faults.IsRetryable(err))

	got := p.docs.docs[doc.ID]
	assert.Equal(t, store.DocumentStatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestProcessDocument_FailedReingestKeepsPreviousIndex(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte(strings.Repeat("A long sentence goes here. ", 8)))
	require.NoError(t, err)
	indexedBefore := len(p.index.entries)
	require.Greater(t, indexedBefore, 1)

	p.embedder.err = fmt.Errorf("embeddings: %w", faults.ErrBackendUnavailable)
	err = p.svc.Reingest(ctx, doc.ID, "owner-1")
	require.Error(t, err)
	assert.True(t, faults.IsRetryable(err))
	assert.Equal(t, store.DocumentStatusFailed, p.docs.docs[doc.ID].Status)

	// The failed run must not touch the previously indexed chunk set.
	assert.Len(t, p.index.entries, indexedBefore)
	assert.Len(t, p.chunks.byDocument[doc.ID], indexedBefore)
}

func TestProcessDocument_ReportsPartialProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndexBatchSize = 2
	p := newTestPipelineCfg(t, cfg)
	ctx := context.Background()

	// First batch of two chunks succeeds, the second batch fails.
	p.embedder.err = fmt.Errorf("embeddings: %w", faults.ErrBackendUnavailable)
	p.embedder.succeedCalls = 1

	_, err := p.svc.Upload(ctx, "owner-1", "doc", []byte(strings.Repeat("The cat sat on the mat. ", 8)))
	require.Error(t, err)
	assert.True(t, faults.IsRetryable(err))

	var pe *PartialIndexError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, pe.Indexed, 2)
	assert.NotEmpty(t, pe.Remaining)

	// Completed batches keep their vectors for the retry.
	assert.Len(t, p.index.entries, 2)
	for _, id := range pe.Indexed {
		assert.Contains(t, p.index.entries, id)
	}
	for _, id := range pe.Remaining {
		assert.NotContains(t, p.index.entries, id)
	}

	require.Len(t, p.docs.docs, 1)
	for _, doc := range p.docs.docs {
		assert.Equal(t, store.DocumentStatusFailed, doc.Status)
		assert.Contains(t, doc.Error, "indexed 2 of")
	}
}

func TestDeleteDocument_RemovesEverywhere(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte("delete me please"))
	require.NoError(t, err)
	require.NotEmpty(t, p.index.entries)

	require.NoError(t, p.svc.DeleteDocument(ctx, doc.ID, "owner-1"))

	assert.Empty(t, p.index.entries)
	assert.NotContains(t, p.docs.docs, doc.ID)
	assert.NotContains(t, p.blobs.objects, doc.ObjectKey)
}

func TestDeleteDocument_ScopedToOwner(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.svc.Upload(ctx, "owner-1", "doc", []byte("private"))
	require.NoError(t, err)

	err = p.svc.DeleteDocument(ctx, doc.ID, "owner-2")
	require.Error(t, err)
	assert.Contains(t, p.docs.docs, doc.ID)
}

func TestStatus_CountsCorpus(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.svc.Upload(ctx, "owner-1", "a", []byte("first document text"))
	require.NoError(t, err)
	_, err = p.svc.Upload(ctx, "owner-1", "b", []byte(strings.Repeat("Second document sentence. ", 6)))
	require.NoError(t, err)
	_, err = p.svc.Upload(ctx, "owner-2", "c", []byte("someone else's text"))
	require.NoError(t, err)

	status, err := p.svc.Status(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Documents)
	assert.Equal(t, int64(2), status.ProcessedDocuments)
	chunks, err := p.chunks.CountByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, chunks, status.Chunks)

	// The point count is collection-wide, so the other owner's vectors are
	// included.
	assert.Equal(t, uint64(len(p.index.entries)), status.IndexedPoints)
}

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("doc-1", 0)
	b := ChunkID("doc-1", 0)
	c := ChunkID("doc-1", 1)
	d := ChunkID("doc-2", 0)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
