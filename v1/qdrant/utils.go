package qdrant

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// validateSearchInput validates common search parameters.
func validateSearchInput(collectionName string, vector []float32, topK int) error {
	if collectionName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	if topK <= 0 {
		return fmt.Errorf("topK must be greater than 0")
	}
	return nil
}

// extractVectorDetails safely extracts the vector size (embedding dimension)
// and distance metric from a Qdrant CollectionInfo.
//
// Qdrant represents vector configuration using deeply nested protobuf
// structures with "oneof" wrappers; this helper navigates that hierarchy and
// guards against nil pointer dereferences. Missing or unexpected fields
// yield (0, "").
func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}

	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}

	return 0, ""
}

// derefUint64 safely dereferences a *uint64 pointer, returning 0 for nil.
func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}
