package qdrant

import (
	"fmt"
	"strings"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertVectorDBFilterSet converts a vectordb.FilterSet to a Qdrant filter.
// It returns nil when no condition survives the conversion.
func convertVectorDBFilterSet(filters *vectordb.FilterSet) *qdrant.Filter {
	if filters.IsEmpty() {
		return nil
	}

	filter := &qdrant.Filter{
		Must:    convertVectorDBConditionSet(filters.Must),
		Should:  convertVectorDBConditionSet(filters.Should),
		MustNot: convertVectorDBConditionSet(filters.MustNot),
	}

	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil
	}
	return filter
}

func convertVectorDBConditionSet(cs *vectordb.ConditionSet) []*qdrant.Condition {
	if cs == nil {
		return nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		if cond := convertVectorDBCondition(c); cond != nil {
			conditions = append(conditions, cond)
		}
	}
	return conditions
}

func convertVectorDBCondition(c vectordb.FilterCondition) *qdrant.Condition {
	switch cond := c.(type) {
	case *vectordb.MatchCondition:
		return convertVectorDBMatchCondition(cond)
	case *vectordb.MatchAnyCondition:
		return convertVectorDBMatchAnyCondition(cond)
	case *vectordb.NumericRangeCondition:
		return convertVectorDBNumericRangeCondition(cond)
	case *vectordb.TimeRangeCondition:
		return convertVectorDBTimeRangeCondition(cond)
	case *vectordb.AnyOfCondition:
		return convertVectorDBAnyOfCondition(cond)
	default:
		return nil
	}
}

func convertVectorDBMatchCondition(c *vectordb.MatchCondition) *qdrant.Condition {
	key := resolveVectorDBFieldKey(c.Field, c.FieldType)
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(key, v)
	case bool:
		return qdrant.NewMatchBool(key, v)
	case int:
		return qdrant.NewMatchInt(key, int64(v))
	case int64:
		return qdrant.NewMatchInt(key, v)
	case float64:
		// JSON numbers decode as float64
		return qdrant.NewMatchInt(key, int64(v))
	default:
		return nil
	}
}

func convertVectorDBMatchAnyCondition(c *vectordb.MatchAnyCondition) *qdrant.Condition {
	if len(c.Values) == 0 {
		return nil
	}
	key := resolveVectorDBFieldKey(c.Field, c.FieldType)

	switch c.Values[0].(type) {
	case string:
		strs := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			if s, ok := v.(string); ok {
				strs = append(strs, s)
			}
		}
		return qdrant.NewMatchKeywords(key, strs...)
	case int, int64, float64:
		ints := make([]int64, 0, len(c.Values))
		for _, v := range c.Values {
			switch n := v.(type) {
			case int:
				ints = append(ints, int64(n))
			case int64:
				ints = append(ints, n)
			case float64:
				ints = append(ints, int64(n))
			}
		}
		return qdrant.NewMatchInts(key, ints...)
	}
	return nil
}

func convertVectorDBNumericRangeCondition(c *vectordb.NumericRangeCondition) *qdrant.Condition {
	r := c.Range
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil
	}
	key := resolveVectorDBFieldKey(c.Field, c.FieldType)
	return qdrant.NewRange(key, &qdrant.Range{
		Gt:  r.Gt,
		Gte: r.Gte,
		Lt:  r.Lt,
		Lte: r.Lte,
	})
}

func convertVectorDBTimeRangeCondition(c *vectordb.TimeRangeCondition) *qdrant.Condition {
	dateRange := &qdrant.DatetimeRange{
		Gt:  toTimestamp(c.Range.Gt),
		Gte: toTimestamp(c.Range.Gte),
		Lt:  toTimestamp(c.Range.Lt),
		Lte: toTimestamp(c.Range.Lte),
	}
	if dateRange.Gt == nil && dateRange.Gte == nil &&
		dateRange.Lt == nil && dateRange.Lte == nil {
		return nil
	}
	key := resolveVectorDBFieldKey(c.Field, c.FieldType)
	return qdrant.NewDatetimeRange(key, dateRange)
}

// convertVectorDBAnyOfCondition nests the group as a filter with a Should clause.
func convertVectorDBAnyOfCondition(c *vectordb.AnyOfCondition) *qdrant.Condition {
	should := convertVectorDBConditionSet(&vectordb.ConditionSet{Conditions: c.Conditions})
	if len(should) == 0 {
		return nil
	}
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Filter{Filter: &qdrant.Filter{Should: should}},
	}
}

// resolveVectorDBFieldKey returns the full payload path for a field.
// Internal fields: "document" -> "document"
// Metadata fields: "block_id" -> "metadata.block_id"
func resolveVectorDBFieldKey(key string, fieldType vectordb.FieldType) string {
	if fieldType == vectordb.MetadataField {
		if strings.HasPrefix(key, vectordb.PayloadMetadata+".") {
			return key
		}
		return vectordb.PayloadMetadata + "." + key
	}
	return key
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// ── Result Conversion ────────────────────────────────────────────────────────

// parseVectorDBSearchResults converts a Qdrant response to vectordb results.
func parseVectorDBSearchResults(resp []*qdrant.ScoredPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(resp))
	for _, r := range resp {
		id, err := extractVectorDBPointID(r.GetId())
		if err != nil {
			return nil, err
		}
		results = append(results, vectordb.SearchResult{
			ID:      id,
			Score:   r.GetScore(),
			Payload: convertVectorDBPayload(r.GetPayload()),
		})
	}
	return results, nil
}

// parseVectorDBRetrievedPoints converts scrolled points. Score is left at zero.
func parseVectorDBRetrievedPoints(points []*qdrant.RetrievedPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(points))
	for _, p := range points {
		id, err := extractVectorDBPointID(p.GetId())
		if err != nil {
			return nil, err
		}
		results = append(results, vectordb.SearchResult{
			ID:      id,
			Payload: convertVectorDBPayload(p.GetPayload()),
		})
	}
	return results, nil
}

// extractVectorDBPointID extracts a string ID from Qdrant's PointId type.
func extractVectorDBPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}

// convertVectorDBPayload converts Qdrant's protobuf payload to a generic map.
func convertVectorDBPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractVectorDBValue(v)
	}
	return result
}

// extractVectorDBValue recursively converts a Qdrant Value to a Go native type.
func extractVectorDBValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertVectorDBPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractVectorDBValue(item)
		}
		return items
	default:
		return nil
	}
}
