package retriever

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/contextra/ragcore/v1/observability"
	"github.com/contextra/ragcore/v1/tracer"
	"github.com/contextra/ragcore/v1/vectordb"
)

// Service turns a query string into a ranked list of document chunks.
//
// The flow is: embed the query, search the vector index scoped to the owner,
// enforce the similarity floor, order by descending score with ordinal
// tie-breaks, then resolve chunk text from the relational store.
type Service struct {
	cfg      *Config
	embedder Embedder
	index    vectordb.Service
	lookup   ChunkLookup
	observer observability.Observer
	tracer   *tracer.Tracer
}

// NewService constructs a retriever.
func NewService(cfg *Config, embedder Embedder, index vectordb.Service, lookup ChunkLookup) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("retriever: invalid config: %w", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("retriever: embedder is required")
	}
	if index == nil {
		return nil, fmt.Errorf("retriever: vector index is required")
	}

	return &Service{
		cfg:      cfg,
		embedder: embedder,
		index:    index,
		lookup:   lookup,
	}, nil
}

// WithObserver attaches an operation observer.
func (s *Service) WithObserver(observer observability.Observer) *Service {
	s.observer = observer
	return s
}

// WithTracer attaches a tracer; each retrieval runs inside its own span.
func (s *Service) WithTracer(t *tracer.Tracer) *Service {
	s.tracer = t
	return s
}

// Retrieve returns at most k chunks relevant to the query, rank-ordered.
//
// An owner with no indexed chunks yields an empty result, not an error; the
// orchestrator degrades to a context-free generation in that case. Backend
// failures are returned wrapped so callers can classify them.
func (s *Service) Retrieve(ctx context.Context, req Request) ([]RetrievedChunk, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("retriever: query cannot be empty")
	}
	if req.OwnerID == "" {
		return nil, fmt.Errorf("retriever: owner id cannot be empty")
	}

	k := s.clampK(req.K)
	minScore := s.resolveMinScore(req.MinScore)
	start := time.Now()

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "retriever.retrieve",
			attribute.String("collection", s.cfg.Collection),
			attribute.Int("k", k),
		)
		defer span.End()
	}

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		s.observe(req, start, err, 0)
		return nil, fmt.Errorf("retriever: query embedding failed: %w", err)
	}

	results, err := s.index.Search(ctx, vectordb.SearchRequest{
		CollectionName: s.cfg.Collection,
		Vector:         vector,
		TopK:           k,
		Filter:         &vectordb.Filter{OwnerID: req.OwnerID},
		MinScore:       minScore,
	})
	if err != nil {
		s.observe(req, start, err, 0)
		return nil, fmt.Errorf("retriever: index search failed: %w", err)
	}

	// One request in, one result slice out; an implementation returning
	// nothing is treated as an empty hit list rather than trusted blindly.
	var hits []vectordb.SearchResult
	if len(results) > 0 {
		hits = results[0]
	}
	chunks := s.rank(hits, req.Query, minScore, k)

	if err := s.resolveTexts(ctx, chunks); err != nil {
		s.observe(req, start, err, 0)
		return nil, err
	}

	s.observe(req, start, nil, int64(len(chunks)))
	return chunks, nil
}

// clampK maps the requested chunk count into [1, KMax], with zero meaning
// the configured default.
func (s *Service) clampK(k int) int {
	switch {
	case k == 0:
		return s.cfg.KDefault
	case k < 1:
		return 1
	case k > s.cfg.KMax:
		return s.cfg.KMax
	default:
		return k
	}
}

// resolveMinScore applies the floor override rules from Request.MinScore.
func (s *Service) resolveMinScore(override float32) float32 {
	switch {
	case override > 0:
		return override
	case override < 0:
		return 0
	default:
		return s.cfg.MinScore
	}
}

// rank applies the similarity floor and produces the final ordering:
// descending score, equal scores broken by ordinal ascending so earlier
// chunks win deterministically.
//
// The index already orders and floors its results; both are re-applied here
// so ranking semantics hold for any vectordb.Service implementation.
func (s *Service) rank(results []vectordb.SearchResult, query string, minScore float32, k int) []RetrievedChunk {
	chunks := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		if minScore > 0 && r.Score < minScore {
			continue
		}
		chunks = append(chunks, RetrievedChunk{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Ordinal:    r.Ordinal,
			Score:      r.Score,
			Query:      query,
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		return chunks[i].Ordinal < chunks[j].Ordinal
	})

	if len(chunks) > k {
		chunks = chunks[:k]
	}
	for i := range chunks {
		chunks[i].Rank = i
	}
	return chunks
}

// resolveTexts fills chunk text from the relational store. Chunks whose text
// is no longer stored keep an empty Text; the assembler skips those.
func (s *Service) resolveTexts(ctx context.Context, chunks []RetrievedChunk) error {
	if s.lookup == nil || len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ChunkID
	}

	texts, err := s.lookup.ChunkTexts(ctx, ids)
	if err != nil {
		return fmt.Errorf("retriever: chunk text lookup failed: %w", err)
	}
	for i := range chunks {
		chunks[i].Text = texts[chunks[i].ChunkID]
	}
	return nil
}

// observe reports an operation to the configured observer, if any.
func (s *Service) observe(req Request, start time.Time, err error, size int64) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component: "retriever",
		Operation: "retrieve",
		Resource:  s.cfg.Collection,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata: map[string]interface{}{
			"owner_id": req.OwnerID,
		},
	})
}
