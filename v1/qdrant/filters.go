package qdrant

import (
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/contextra/ragcore/v1/vectordb"
)

// Payload keys for chunk entries. Kept flat so Qdrant payload indexes can be
// built directly on them.
const (
	payloadKeyDocumentID = "document_id"
	payloadKeyOwnerID    = "owner_id"
	payloadKeyOrdinal    = "ordinal"
	payloadKeyCreatedAt  = "created_at"
)

// entryPayload builds the stored payload for an index entry. Only filtering
// metadata goes into the index; chunk text stays in the relational store.
func entryPayload(e vectordb.IndexEntry) map[string]any {
	return map[string]any{
		payloadKeyDocumentID: e.DocumentID,
		payloadKeyOwnerID:    e.OwnerID,
		payloadKeyOrdinal:    int64(e.Ordinal),
		payloadKeyCreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// buildFilter converts the database-agnostic filter into Qdrant conditions.
// Returns nil for an empty filter so unrestricted searches skip filtering
// entirely.
func buildFilter(f *vectordb.Filter) *qdrant.Filter {
	if f.IsZero() {
		return nil
	}

	var must []*qdrant.Condition

	if f.OwnerID != "" {
		must = append(must, qdrant.NewMatch(payloadKeyOwnerID, f.OwnerID))
	}

	switch len(f.DocumentIDs) {
	case 0:
	case 1:
		must = append(must, qdrant.NewMatch(payloadKeyDocumentID, f.DocumentIDs[0]))
	default:
		must = append(must, qdrant.NewMatchKeywords(payloadKeyDocumentID, f.DocumentIDs...))
	}

	if cond := ingestionRangeCondition(f.IngestedAfter, f.IngestedBefore); cond != nil {
		must = append(must, cond)
	}

	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

// ingestionRangeCondition builds a datetime range condition over the
// created_at payload field, or nil when no bound is set.
func ingestionRangeCondition(after, before *time.Time) *qdrant.Condition {
	if after == nil && before == nil {
		return nil
	}

	dateRange := &qdrant.DatetimeRange{
		Gte: toTimestamp(after),
		Lte: toTimestamp(before),
	}
	return qdrant.NewDatetimeRange(payloadKeyCreatedAt, dateRange)
}

// toTimestamp converts a *time.Time to *timestamppb.Timestamp (nil-safe).
func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// payloadString extracts a string field from a scored point payload.
func payloadString(payload map[string]*qdrant.Value, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// payloadInt extracts an integer field from a scored point payload.
func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}
