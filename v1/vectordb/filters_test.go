package vectordb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterSetIsEmpty(t *testing.T) {
	var nilSet *FilterSet
	assert.True(t, nilSet.IsEmpty())
	assert.True(t, NewFilterSet().IsEmpty())
	assert.True(t, NewFilterSet(Must()).IsEmpty())
	assert.False(t, NewFilterSet(Must(NewMetadataMatch("block_id", "x"))).IsEmpty())
	assert.False(t, NewFilterSet(MustNot(NewMatch("document", "x"))).IsEmpty())
}

func TestTimeRangeBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r := TimeRangeBetween(from, time.Time{})

	if assert.NotNil(t, r.Gte) {
		assert.True(t, r.Gte.Equal(from))
	}
	assert.Nil(t, r.Lte)
	assert.Nil(t, r.Gt)
}

func TestSearchResultAccessors(t *testing.T) {
	r := SearchResult{Payload: map[string]any{
		PayloadDocument: "text",
		PayloadMetadata: map[string]any{"block_id": "b1"},
	}}

	assert.Equal(t, "text", r.Document())
	assert.Equal(t, "b1", r.Metadata()["block_id"])
	assert.Empty(t, SearchResult{}.Document())
	assert.Nil(t, SearchResult{}.Metadata())
}
