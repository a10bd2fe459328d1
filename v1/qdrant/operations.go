package qdrant

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/contextra/ragcore/v1/vectordb"
)

// EnsureCollection verifies that a collection exists, creating it with the
// given vector dimension and cosine distance if missing.
//
// Safe to call multiple times; if the collection already exists the function
// exits early. This simplifies startup logic for services that bootstrap
// their own collections.
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, vectorSize uint64) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize == 0 {
		return fmt.Errorf("vector size cannot be zero")
	}

	collections, err := c.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	if slices.Contains(collections, name) {
		log.Printf("[Qdrant] Collection '%s' already exists", name)
		return nil
	}

	log.Printf("[Qdrant] Collection '%s' not found, creating it...", name)

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := c.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", name, err)
	}

	log.Printf("[Qdrant] Created collection '%s' (dim=%d, distance=cosine)", name, vectorSize)
	return nil
}

// Upsert writes chunk entries into a collection in batches of
// defaultBatchSize, replacing entries that share a chunk identifier.
// Returns the number of entries written.
func (c *QdrantClient) Upsert(ctx context.Context, collection string, entries []vectordb.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if collection == "" {
		return 0, fmt.Errorf("collection name cannot be empty")
	}

	start := time.Now()
	written := 0
	var opErr error

	for lo := 0; lo < len(entries); lo += defaultBatchSize {
		hi := min(lo+defaultBatchSize, len(entries))
		batch := entries[lo:hi]

		if opErr = c.upsertBatch(ctx, collection, batch); opErr != nil {
			opErr = fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", lo, hi, opErr)
			break
		}
		written += len(batch)
		log.Printf("[Qdrant] Upserted batch [%d:%d] (collection=%s)", lo, hi, collection)
	}

	c.observe("upsert", collection, "", start, opErr, int64(written))
	return written, opErr
}

// upsertBatch sends a single blocking Upsert request (Wait=true) so data is
// persisted before returning.
func (c *QdrantClient) upsertBatch(ctx context.Context, collection string, batch []vectordb.IndexEntry) error {
	points := make([]*qdrant.PointStruct, 0, len(batch))
	for _, e := range batch {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(e.ChunkID),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(entryPayload(e)),
		})
	}

	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	}

	if _, err := c.api.Upsert(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] upsert failed: %w", err)
	}
	return nil
}

// Search performs one similarity search per request and returns one result
// slice per request, ordered by descending similarity. Each request can
// carry its own owner/document filter and score floor.
func (c *QdrantClient) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("at least one search request is required")
	}

	results := make([][]vectordb.SearchResult, 0, len(requests))

	for i, searchReq := range requests {
		if err := validateSearchInput(searchReq.CollectionName, searchReq.Vector, searchReq.TopK); err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}

		start := time.Now()
		limit := uint64(searchReq.TopK)
		req := &qdrant.QueryPoints{
			CollectionName: searchReq.CollectionName,
			Query:          qdrant.NewQuery(searchReq.Vector...),
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
			Filter:         buildFilter(searchReq.Filter),
		}
		if searchReq.MinScore > 0 {
			threshold := searchReq.MinScore
			req.ScoreThreshold = &threshold
		}

		resp, err := c.api.Query(ctx, req)
		c.observe("search", searchReq.CollectionName, "", start, err, int64(len(resp)))
		if err != nil {
			return nil, fmt.Errorf("request [%d] search failed: %w", i, err)
		}

		res, err := c.parseSearchResults(resp)
		if err != nil {
			return nil, fmt.Errorf("request [%d] parse failed: %w", i, err)
		}

		results = append(results, res)
		log.Printf("[Qdrant] Search request [%d] returned %d results", i, len(res))
	}

	return results, nil
}

// parseSearchResults converts scored points into vectordb results.
func (c *QdrantClient) parseSearchResults(resp []*qdrant.ScoredPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(resp))
	for _, r := range resp {
		var id string
		switch v := r.Id.PointIdOptions.(type) {
		case *qdrant.PointId_Num:
			id = fmt.Sprintf("%d", v.Num)
		case *qdrant.PointId_Uuid:
			id = v.Uuid
		default:
			return nil, fmt.Errorf("[Qdrant] unexpected PointId type: %T", v)
		}

		results = append(results, vectordb.SearchResult{
			ChunkID:    id,
			Score:      r.Score,
			DocumentID: payloadString(r.Payload, payloadKeyDocumentID),
			OwnerID:    payloadString(r.Payload, payloadKeyOwnerID),
			Ordinal:    int(payloadInt(r.Payload, payloadKeyOrdinal)),
		})
	}
	return results, nil
}

// DeleteChunks removes entries from a collection by chunk identifier.
// Waits synchronously for completion.
func (c *QdrantClient) DeleteChunks(ctx context.Context, collection string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	wait := true
	req := &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: qdrantIDs},
			},
		},
		Wait: &wait,
	}

	start := time.Now()
	resp, err := c.api.Delete(ctx, req)
	c.observe("delete", collection, "", start, err, int64(len(chunkIDs)))
	if err != nil {
		return fmt.Errorf("[Qdrant] delete failed: %w", err)
	}

	log.Printf("[Qdrant] Delete completed (status=%s, collection=%s, ids=%d)",
		resp.Status.String(), collection, len(chunkIDs))
	return nil
}

// DeleteDocument removes every entry whose payload references the given
// document, keeping the index free of orphaned vectors after a document is
// deleted or re-ingested.
func (c *QdrantClient) DeleteDocument(ctx context.Context, collection string, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	wait := true
	req := &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch(payloadKeyDocumentID, documentID),
					},
				},
			},
		},
		Wait: &wait,
	}

	start := time.Now()
	resp, err := c.api.Delete(ctx, req)
	c.observe("delete_document", collection, documentID, start, err, -1)
	if err != nil {
		return fmt.Errorf("[Qdrant] delete by document failed: %w", err)
	}

	log.Printf("[Qdrant] Deleted document entries (status=%s, collection=%s, document=%s)",
		resp.Status.String(), collection, documentID)
	return nil
}

// GetCollection retrieves metadata about a collection as a decoupled
// vectordb.Collection, hiding Qdrant SDK internals from the application
// layer.
func (c *QdrantClient) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if c.api == nil {
		return nil, fmt.Errorf("[Qdrant] client not initialized")
	}
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	info, err := c.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info)

	return &vectordb.Collection{
		Name:       name,
		Status:     info.Status.String(),
		VectorSize: size,
		Distance:   distance,
		Points:     derefUint64(info.PointsCount),
	}, nil
}

// ListCollections retrieves all existing collection names.
func (c *QdrantClient) ListCollections(ctx context.Context) ([]string, error) {
	if c.api == nil {
		return nil, fmt.Errorf("[Qdrant] client not initialized")
	}

	names, err := c.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	log.Printf("[Qdrant] Found %d collections", len(names))
	return names, nil
}
