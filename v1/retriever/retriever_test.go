package retriever

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextra/ragcore/v1/faults"
	"github.com/contextra/ragcore/v1/vectordb"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// fakeIndex returns canned results and records the last search request.
type fakeIndex struct {
	vectordb.Service

	results []vectordb.SearchResult
	err     error
	lastReq vectordb.SearchRequest
}

func (f *fakeIndex) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	f.lastReq = requests[0]
	if f.err != nil {
		return nil, f.err
	}
	return [][]vectordb.SearchResult{f.results}, nil
}

type fakeLookup struct {
	texts map[string]string
	err   error
}

func (f *fakeLookup) ChunkTexts(ctx context.Context, chunkIDs []string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.texts, nil
}

func newTestService(t *testing.T, index *fakeIndex, lookup ChunkLookup) *Service {
	t.Helper()

	svc, err := NewService(DefaultConfig(), &fakeEmbedder{vector: []float32{0.1, 0.2}}, index, lookup)
	require.NoError(t, err)
	return svc
}

func result(id string, ordinal int, score float32) vectordb.SearchResult {
	return vectordb.SearchResult{
		ChunkID:    id,
		DocumentID: "doc-1",
		OwnerID:    "user-1",
		Ordinal:    ordinal,
		Score:      score,
	}
}

func TestRetrieve_FloorAndK(t *testing.T) {
	// Five indexed chunks with known scores; k=3 and floor 0.6 keep the
	// top three.
	index := &fakeIndex{results: []vectordb.SearchResult{
		result("c1", 0, 0.9),
		result("c2", 1, 0.8),
		result("c3", 2, 0.7),
		result("c4", 3, 0.5),
		result("c5", 4, 0.3),
	}}
	svc := newTestService(t, index, nil)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1", K: 3})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, []float32{0.9, 0.8, 0.7}, []float32{chunks[0].Score, chunks[1].Score, chunks[2].Score})
	for i, c := range chunks {
		assert.Equal(t, i, c.Rank)
		assert.GreaterOrEqual(t, c.Score, float32(0.6))
	}
}

func TestRetrieve_FloorIsInclusive(t *testing.T) {
	index := &fakeIndex{results: []vectordb.SearchResult{
		result("c1", 0, 0.6),
	}}
	svc := newTestService(t, index, nil)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c1", chunks[0].ChunkID)
}

func TestRetrieve_TieBreakByOrdinal(t *testing.T) {
	index := &fakeIndex{results: []vectordb.SearchResult{
		result("late", 5, 0.8),
		result("early", 1, 0.8),
		result("top", 3, 0.9),
	}}
	svc := newTestService(t, index, nil)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1", K: 5})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "top", chunks[0].ChunkID)
	assert.Equal(t, "early", chunks[1].ChunkID, "equal scores prefer the earlier ordinal")
	assert.Equal(t, "late", chunks[2].ChunkID)
}

func TestRetrieve_ClampsK(t *testing.T) {
	index := &fakeIndex{}
	svc := newTestService(t, index, nil)

	cases := []struct {
		requested int
		expected  int
	}{
		{0, DefaultKDefault},
		{-5, 1},
		{7, 7},
		{100, DefaultKMax},
	}
	for _, tc := range cases {
		_, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1", K: tc.requested})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, index.lastReq.TopK, "requested k=%d", tc.requested)
	}
}

func TestRetrieve_ScopesToOwner(t *testing.T) {
	index := &fakeIndex{}
	svc := newTestService(t, index, nil)

	_, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-42"})
	require.NoError(t, err)

	require.NotNil(t, index.lastReq.Filter)
	assert.Equal(t, "user-42", index.lastReq.Filter.OwnerID)
	assert.Equal(t, float32(DefaultMinScore), index.lastReq.MinScore)
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	index := &fakeIndex{results: nil}
	svc := newTestService(t, index, nil)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

// bareIndex answers searches with no result slices at all.
type bareIndex struct {
	vectordb.Service
}

func (bareIndex) Search(context.Context, ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	return nil, nil
}

func TestRetrieve_ToleratesEmptySearchResponse(t *testing.T) {
	svc, err := NewService(DefaultConfig(), &fakeEmbedder{vector: []float32{0.1, 0.2}}, bareIndex{}, nil)
	require.NoError(t, err)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetrieve_ResolvesChunkText(t *testing.T) {
	index := &fakeIndex{results: []vectordb.SearchResult{
		result("c1", 0, 0.9),
		result("c2", 1, 0.8),
	}}
	lookup := &fakeLookup{texts: map[string]string{
		"c1": "first chunk text",
		"c2": "second chunk text",
	}}
	svc := newTestService(t, index, lookup)

	chunks, err := svc.Retrieve(context.Background(), Request{Query: "what is this", OwnerID: "user-1"})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "first chunk text", chunks[0].Text)
	assert.Equal(t, "second chunk text", chunks[1].Text)
	assert.Equal(t, "what is this", chunks[0].Query)
}

func TestRetrieve_EmbedderFailurePropagates(t *testing.T) {
	svc, err := NewService(DefaultConfig(),
		&fakeEmbedder{err: fmt.Errorf("backend down: %w", faults.ErrBackendUnavailable)},
		&fakeIndex{}, nil)
	require.NoError(t, err)

	_, err = svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1"})
	require.Error(t, err)
	assert.True(t, faults.IsBackendUnavailable(err))
}

func TestRetrieve_IndexFailurePropagates(t *testing.T) {
	index := &fakeIndex{err: fmt.Errorf("qdrant unreachable: %w", faults.ErrBackendUnavailable)}
	svc := newTestService(t, index, nil)

	_, err := svc.Retrieve(context.Background(), Request{Query: "q", OwnerID: "user-1"})
	require.Error(t, err)
	assert.True(t, faults.IsBackendUnavailable(err))
}

func TestRetrieve_ValidatesInput(t *testing.T) {
	svc := newTestService(t, &fakeIndex{}, nil)

	_, err := svc.Retrieve(context.Background(), Request{OwnerID: "user-1"})
	assert.Error(t, err)

	_, err = svc.Retrieve(context.Background(), Request{Query: "q"})
	assert.Error(t, err)
}
