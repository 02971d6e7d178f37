package vectordb

import "time"

// FieldType indicates whether a field lives at the payload top level
// or inside the record metadata object.
type FieldType int

const (
	// InternalField - stored at the payload top level (e.g. "document")
	InternalField FieldType = iota
	// MetadataField - stored under "metadata." (e.g. "metadata.block_id")
	MetadataField
)

// FilterCondition is the interface all filter conditions must implement.
// Each database adapter converts these to its native filter format.
type FilterCondition interface {
	IsFilterCondition()
}

// FilterSet supports Must (AND), Should (OR), and MustNot (NOT) clauses.
//
// Example:
//
//	filters := &FilterSet{
//	    Must: &ConditionSet{
//	        Conditions: []FilterCondition{
//	            NewMetadataMatch("block_id", "64f1"),
//	        },
//	    },
//	}
type FilterSet struct {
	Must    *ConditionSet `json:"must,omitempty"`
	Should  *ConditionSet `json:"should,omitempty"`
	MustNot *ConditionSet `json:"mustNot,omitempty"`
}

// ConditionSet holds a group of conditions for a single clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// IsEmpty reports whether the filter set carries no condition at all.
func (fs *FilterSet) IsEmpty() bool {
	if fs == nil {
		return true
	}
	return fs.Must.len() == 0 && fs.Should.len() == 0 && fs.MustNot.len() == 0
}

func (cs *ConditionSet) len() int {
	if cs == nil {
		return 0
	}
	return len(cs.Conditions)
}

// MatchCondition represents an exact match filter (field = value).
// Supports string, bool and integer values.
type MatchCondition struct {
	Field     string    `json:"field"`
	Value     any       `json:"equalTo"`
	FieldType FieldType `json:"-"`
}

func (c *MatchCondition) IsFilterCondition() {}

// MatchAnyCondition matches if value is one of the given values (IN operator).
type MatchAnyCondition struct {
	Field     string    `json:"field"`
	Values    []any     `json:"anyOf"`
	FieldType FieldType `json:"-"`
}

func (c *MatchAnyCondition) IsFilterCondition() {}

// NumericRange defines bounds for numeric filtering.
type NumericRange struct {
	Gt  *float64 `json:"greaterThan,omitempty"`
	Gte *float64 `json:"greaterThanOrEqualTo,omitempty"`
	Lt  *float64 `json:"lessThan,omitempty"`
	Lte *float64 `json:"lessThanOrEqualTo,omitempty"`
}

// NumericRangeCondition filters by numeric range, e.g. word count.
type NumericRangeCondition struct {
	Field     string       `json:"field"`
	Range     NumericRange `json:"range"`
	FieldType FieldType    `json:"-"`
}

func (c *NumericRangeCondition) IsFilterCondition() {}

// TimeRange defines bounds for time filtering.
type TimeRange struct {
	Gt  *time.Time `json:"after,omitempty"`
	Gte *time.Time `json:"atOrAfter,omitempty"`
	Lt  *time.Time `json:"before,omitempty"`
	Lte *time.Time `json:"atOrBefore,omitempty"`
}

// TimeRangeCondition filters by datetime range. The stored value must be an
// RFC 3339 string.
type TimeRangeCondition struct {
	Field     string    `json:"field"`
	Range     TimeRange `json:"range"`
	FieldType FieldType `json:"-"`
}

func (c *TimeRangeCondition) IsFilterCondition() {}

// AnyOfCondition matches when at least one nested condition matches. It lets a
// single Must clause carry an OR group.
type AnyOfCondition struct {
	Conditions []FilterCondition `json:"anyOf"`
}

func (c *AnyOfCondition) IsFilterCondition() {}
