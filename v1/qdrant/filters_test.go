package qdrant

import (
	"testing"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/contextra/ragcore/v1/vectordb"
)

func TestBuildFilter_NilFilter(t *testing.T) {
	result := buildFilter(nil)
	if result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestBuildFilter_EmptyFilter(t *testing.T) {
	result := buildFilter(&vectordb.Filter{})
	if result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestBuildFilter_OwnerOnly(t *testing.T) {
	result := buildFilter(&vectordb.Filter{OwnerID: "user-1"})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Errorf("expected 1 Must condition, got %d", len(result.Must))
	}
}

func TestBuildFilter_SingleDocument(t *testing.T) {
	result := buildFilter(&vectordb.Filter{DocumentIDs: []string{"doc-1"}})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Fatalf("expected 1 Must condition, got %d", len(result.Must))
	}

	field := result.Must[0].GetField()
	if field == nil {
		t.Fatal("expected field condition")
	}
	if field.Key != payloadKeyDocumentID {
		t.Errorf("expected key %q, got %q", payloadKeyDocumentID, field.Key)
	}
	if field.Match.GetKeyword() != "doc-1" {
		t.Errorf("expected keyword match 'doc-1', got %q", field.Match.GetKeyword())
	}
}

func TestBuildFilter_MultipleDocuments(t *testing.T) {
	result := buildFilter(&vectordb.Filter{DocumentIDs: []string{"doc-1", "doc-2"}})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Fatalf("expected 1 Must condition, got %d", len(result.Must))
	}

	field := result.Must[0].GetField()
	if field == nil {
		t.Fatal("expected field condition")
	}
	keywords := field.Match.GetKeywords()
	if keywords == nil {
		t.Fatal("expected keywords match for multiple documents")
	}
	if len(keywords.Strings) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(keywords.Strings))
	}
}

func TestBuildFilter_OwnerAndDocuments(t *testing.T) {
	result := buildFilter(&vectordb.Filter{
		OwnerID:     "user-1",
		DocumentIDs: []string{"doc-1", "doc-2"},
	})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 2 {
		t.Errorf("expected 2 Must conditions, got %d", len(result.Must))
	}
}

func TestBuildFilter_IngestionRange(t *testing.T) {
	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	result := buildFilter(&vectordb.Filter{
		IngestedAfter:  &after,
		IngestedBefore: &before,
	})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Fatalf("expected 1 Must condition, got %d", len(result.Must))
	}

	field := result.Must[0].GetField()
	if field == nil {
		t.Fatal("expected field condition")
	}
	if field.Key != payloadKeyCreatedAt {
		t.Errorf("expected key %q, got %q", payloadKeyCreatedAt, field.Key)
	}
	dr := field.GetDatetimeRange()
	if dr == nil {
		t.Fatal("expected datetime range")
	}
	if !dr.Gte.AsTime().Equal(after) {
		t.Errorf("expected Gte %v, got %v", after, dr.Gte.AsTime())
	}
	if !dr.Lte.AsTime().Equal(before) {
		t.Errorf("expected Lte %v, got %v", before, dr.Lte.AsTime())
	}
}

func TestBuildFilter_OpenEndedIngestionRange(t *testing.T) {
	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	result := buildFilter(&vectordb.Filter{IngestedAfter: &after})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	dr := result.Must[0].GetField().GetDatetimeRange()
	if dr == nil {
		t.Fatal("expected datetime range")
	}
	if dr.Lte != nil {
		t.Errorf("expected nil Lte for open-ended range, got %v", dr.Lte)
	}
}

func TestEntryPayload_Fields(t *testing.T) {
	created := time.Date(2025, 3, 15, 12, 30, 0, 0, time.FixedZone("MSK", 3*3600))

	payload := entryPayload(vectordb.IndexEntry{
		ChunkID:    "00000000-0000-0000-0000-000000000001",
		DocumentID: "doc-1",
		OwnerID:    "user-1",
		Ordinal:    7,
		CreatedAt:  created,
	})

	if payload[payloadKeyDocumentID] != "doc-1" {
		t.Errorf("expected document_id 'doc-1', got %v", payload[payloadKeyDocumentID])
	}
	if payload[payloadKeyOwnerID] != "user-1" {
		t.Errorf("expected owner_id 'user-1', got %v", payload[payloadKeyOwnerID])
	}
	if payload[payloadKeyOrdinal] != int64(7) {
		t.Errorf("expected ordinal 7, got %v", payload[payloadKeyOrdinal])
	}
	// Timestamps are normalized to UTC so range filters compare consistently.
	if payload[payloadKeyCreatedAt] != "2025-03-15T09:30:00Z" {
		t.Errorf("expected UTC RFC3339 created_at, got %v", payload[payloadKeyCreatedAt])
	}
}

func TestPayloadHelpers_MissingKeys(t *testing.T) {
	payload := map[string]*qdrant.Value{}

	if got := payloadString(payload, "absent"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := payloadInt(payload, "absent"); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := payloadString(nil, "absent"); got != "" {
		t.Errorf("expected empty string for nil payload, got %q", got)
	}
}

func TestValidateSearchInput(t *testing.T) {
	if err := validateSearchInput("chunks", []float32{0.1}, 3); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
	if err := validateSearchInput("", []float32{0.1}, 3); err == nil {
		t.Error("expected error for empty collection")
	}
	if err := validateSearchInput("chunks", nil, 3); err == nil {
		t.Error("expected error for empty vector")
	}
	if err := validateSearchInput("chunks", []float32{0.1}, 0); err == nil {
		t.Error("expected error for non-positive topK")
	}
}
