package vectordb

import "time"

// NewFilterSet creates a FilterSet with the given clauses.
//
// Example:
//
//	vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataMatch("block_id", "64f1")),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must creates a Must clause (AND logic) with the given conditions.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Must = &ConditionSet{Conditions: conditions}
	}
}

// Should creates a Should clause (OR logic) with the given conditions.
// At least one of them must match.
func Should(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Should = &ConditionSet{Conditions: conditions}
	}
}

// MustNot creates a MustNot clause (NOT logic) with the given conditions.
func MustNot(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.MustNot = &ConditionSet{Conditions: conditions}
	}
}

// NewMatch creates a match condition on a top-level payload field.
func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value, FieldType: InternalField}
}

// NewMetadataMatch creates a match condition on a metadata field.
func NewMetadataMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value, FieldType: MetadataField}
}

// NewMetadataMatchAny creates an IN condition on a metadata field.
//
// The values must share one type: all strings or all integers. The type of
// the first value decides how the list is sent.
//
// Example:
//
//	// metadata.block_id IN ("64f1", "64f2")
//	cond := vectordb.NewMetadataMatchAny("block_id", "64f1", "64f2")
func NewMetadataMatchAny(field string, values ...any) *MatchAnyCondition {
	return &MatchAnyCondition{Field: field, Values: values, FieldType: MetadataField}
}

// NewMetadataNumericRange creates a numeric range condition on a metadata field.
// Nil bounds are open; the adapter drops a range without any bound.
//
// Example:
//
//	// 20 <= metadata.word_count <= 200
//	lo, hi := 20.0, 200.0
//	cond := vectordb.NewMetadataNumericRange("word_count", vectordb.NumericRange{Gte: &lo, Lte: &hi})
func NewMetadataNumericRange(field string, r NumericRange) *NumericRangeCondition {
	return &NumericRangeCondition{Field: field, Range: r, FieldType: MetadataField}
}

// NewMetadataTimeRange creates a time range condition on a metadata field.
// The field holds RFC 3339 strings, such as the created_at of every record.
//
// Example:
//
//	since := time.Now().Add(-7 * 24 * time.Hour)
//	cond := vectordb.NewMetadataTimeRange("created_at", vectordb.TimeRange{Gte: &since})
func NewMetadataTimeRange(field string, r TimeRange) *TimeRangeCondition {
	return &TimeRangeCondition{Field: field, Range: r, FieldType: MetadataField}
}

// TimeRangeBetween is a convenience for an inclusive [from, to] window.
// A zero time leaves that side open.
func TimeRangeBetween(from, to time.Time) TimeRange {
	var r TimeRange
	if !from.IsZero() {
		r.Gte = &from
	}
	if !to.IsZero() {
		r.Lte = &to
	}
	return r
}

// AnyOf groups conditions with OR logic. Unlike Should it can be nested
// inside Must, which is how one value is matched as a string or an integer.
//
// Example:
//
//	vectordb.NewFilterSet(vectordb.Must(
//	    vectordb.NewMetadataMatch("block_id", "64f1"),
//	    vectordb.AnyOf(
//	        vectordb.NewMetadataMatch("word_count", "42"),
//	        vectordb.NewMetadataMatch("word_count", int64(42)),
//	    ),
//	))
func AnyOf(conditions ...FilterCondition) *AnyOfCondition {
	return &AnyOfCondition{Conditions: conditions}
}
