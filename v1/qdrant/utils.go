package qdrant

import (
	"fmt"
	"strconv"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// validateSearchInput validates common search parameters
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

// toPointID maps numeric strings to numeric ids and everything else to UUID ids.
func toPointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewID(id)
}

// extractVectorDetails returns the vector size and distance metric of a
// collection. For collections with named vectors the entry for vectorName is
// used, falling back to any entry when vectorName is not present.
//
// If any nested field is missing it returns (0, "").
func extractVectorDetails(info *qdrant.CollectionInfo, vectorName string) (int, string) {
	cfg := info.GetConfig().GetParams().GetVectorsConfig()
	if cfg == nil {
		return 0, ""
	}

	if params := cfg.GetParams(); params != nil {
		return int(params.GetSize()), params.GetDistance().String()
	}

	named := cfg.GetParamsMap().GetMap()
	if p, ok := named[vectorName]; ok && p != nil {
		return int(p.GetSize()), p.GetDistance().String()
	}
	for _, p := range named {
		if p != nil {
			return int(p.GetSize()), p.GetDistance().String()
		}
	}
	return 0, ""
}

// derefUint64 safely dereferences a *uint64 pointer.
func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}
