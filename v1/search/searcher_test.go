package search

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/store"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

func TestSearchEmptyQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewSearcher(Config{}, vectordb.NewMockService(ctrl), embedding.NewMockEmbedder(ctrl), logger.NewNopLogger())

	_, err := s.Search(context.Background(), Query{Text: "  ", Collection: "c"})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchUsesDefaultLimitAndFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := vectordb.NewMockService(ctrl)
	emb := embedding.NewMockEmbedder(ctrl)

	emb.EXPECT().EmbedQuery(gomock.Any(), "lighthouse").Return([]float32{1, 0}, nil)
	db.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
			assert.Equal(t, "novel_blocks", req.CollectionName)
			assert.Equal(t, 7, req.TopK)
			require.NotNil(t, req.Filters)
			require.Len(t, req.Filters.Must.Conditions, 1)
			assert.Equal(t, vectordb.NewMetadataMatch("block_id", "b1"), req.Filters.Must.Conditions[0])
			return []vectordb.SearchResult{
				{ID: "p2", Score: 0.5, Payload: map[string]any{"document": "low"}},
				{ID: "p1", Score: 0.9, Payload: map[string]any{
					"document": "high",
					"metadata": map[string]any{"block_id": "b1"},
				}},
			}, nil
		})

	s := NewSearcher(Config{Limit: 7}, db, emb, logger.NewNopLogger())
	results, err := s.Search(context.Background(), Query{
		Text:       " lighthouse ",
		Collection: "novel_blocks",
		Filters:    map[string][]string{"block_id": {"b1"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p1", results[0].ID)
	assert.Equal(t, "high", results[0].Content)
	assert.Equal(t, "b1", results[0].Metadata["block_id"])
}

func TestSearchExplicitLimitWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := vectordb.NewMockService(ctrl)
	emb := embedding.NewMockEmbedder(ctrl)

	emb.EXPECT().EmbedQuery(gomock.Any(), "q").Return([]float32{1}, nil)
	db.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
			assert.Equal(t, 3, req.TopK)
			assert.Nil(t, req.Filters)
			return nil, nil
		})

	s := NewSearcher(Config{Limit: 10}, db, emb, logger.NewNopLogger())
	results, err := s.Search(context.Background(), Query{Text: "q", Collection: "c", Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchPropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := vectordb.NewMockService(ctrl)
	emb := embedding.NewMockEmbedder(ctrl)
	s := NewSearcher(Config{}, db, emb, logger.NewNopLogger())

	emb.EXPECT().EmbedQuery(gomock.Any(), "q").Return(nil, errors.New("endpoint down"))
	_, err := s.Search(context.Background(), Query{Text: "q", Collection: "c"})
	assert.ErrorContains(t, err, "endpoint down")

	emb.EXPECT().EmbedQuery(gomock.Any(), "q").Return([]float32{1}, nil)
	db.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable"))
	_, err = s.Search(context.Background(), Query{Text: "q", Collection: "c"})
	assert.ErrorContains(t, err, "unavailable")
}

func TestBuildFilters(t *testing.T) {
	assert.Nil(t, BuildFilters(Query{}))
	assert.Nil(t, BuildFilters(Query{Filters: map[string][]string{"block_id": nil}}))

	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fs := BuildFilters(Query{
		Filters:      map[string][]string{"word_count": {"42"}, "block_id": {"b1"}},
		CreatedAfter: after,
	})
	require.NotNil(t, fs)
	require.Len(t, fs.Must.Conditions, 3)

	// keys are sorted
	assert.Equal(t, vectordb.NewMetadataMatch("block_id", "b1"), fs.Must.Conditions[0])
	assert.Equal(t, vectordb.AnyOf(
		vectordb.NewMetadataMatch("word_count", "42"),
		vectordb.NewMetadataMatch("word_count", int64(42)),
	), fs.Must.Conditions[1])

	tr, ok := fs.Must.Conditions[2].(*vectordb.TimeRangeCondition)
	require.True(t, ok)
	assert.Equal(t, "created_at", tr.Field)
	assert.Nil(t, tr.Range.Lte)
}

func TestBuildFiltersRepeatedKeyMatchesAny(t *testing.T) {
	fs := BuildFilters(Query{Filters: map[string][]string{
		"block_id":   {"b1", "b2"},
		"word_count": {"7", "x", "9"},
	}})
	require.NotNil(t, fs)
	require.Len(t, fs.Must.Conditions, 2)

	assert.Equal(t, vectordb.NewMetadataMatchAny("block_id", "b1", "b2"), fs.Must.Conditions[0])
	assert.Equal(t, vectordb.AnyOf(
		vectordb.NewMetadataMatchAny("word_count", "7", "x", "9"),
		vectordb.NewMetadataMatchAny("word_count", int64(7), int64(9)),
	), fs.Must.Conditions[1])
}

func TestBuildFiltersWordRange(t *testing.T) {
	fs := BuildFilters(Query{MinWords: 10, MaxWords: 200})
	require.NotNil(t, fs)
	require.Len(t, fs.Must.Conditions, 1)
	nr, ok := fs.Must.Conditions[0].(*vectordb.NumericRangeCondition)
	require.True(t, ok)
	assert.Equal(t, "word_count", nr.Field)
	require.NotNil(t, nr.Range.Gte)
	require.NotNil(t, nr.Range.Lte)
	assert.Equal(t, 10.0, *nr.Range.Gte)
	assert.Equal(t, 200.0, *nr.Range.Lte)

	fs = BuildFilters(Query{MaxWords: 5})
	nr = fs.Must.Conditions[0].(*vectordb.NumericRangeCondition)
	assert.Nil(t, nr.Range.Gte)
	assert.Equal(t, 5.0, *nr.Range.Lte)
}

func TestSearchRejectsInvalidWordRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewSearcher(Config{}, vectordb.NewMockService(ctrl), embedding.NewMockEmbedder(ctrl), logger.NewNopLogger())

	for _, q := range []Query{
		{Text: "q", Collection: "c", MinWords: 50, MaxWords: 10},
		{Text: "q", Collection: "c", MinWords: -1},
		{Text: "q", Collection: "c", MaxWords: -3},
	} {
		_, err := s.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidWordRange)
	}
}

func TestParseFilter(t *testing.T) {
	k, v, err := ParseFilter("block_id = 64f1")
	require.NoError(t, err)
	assert.Equal(t, "block_id", k)
	assert.Equal(t, "64f1", v)

	_, _, err = ParseFilter("novalue")
	assert.Error(t, err)
	_, _, err = ParseFilter("=x")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Format(&buf, []Result{
		{ID: "p1", Score: 0.91234, Content: strings.Repeat("가", 250), Metadata: map[string]any{
			"block_id": "b1", "word_count": int64(42), "created_at": "2024-05-01T10:00:00Z",
		}},
		{ID: "p2", Score: 0.5, Content: "short"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Found 2 related blocks:")
	assert.Contains(t, out, "Block #1 (score: 0.9123)")
	assert.Contains(t, out, "ID: b1")
	assert.Contains(t, out, "Words: 42")
	assert.Contains(t, out, "Created: 2024-05-01T10:00:00Z")
	assert.Contains(t, out, "  "+strings.Repeat("가", 200)+"...\n")
	assert.Contains(t, out, "Block #2 (score: 0.5000)")
	assert.Contains(t, out, "ID: N/A")
	assert.Equal(t, 1, strings.Count(out, strings.Repeat("-", 40)+"\n"))

	buf.Reset()
	require.NoError(t, Format(&buf, nil))
	assert.Equal(t, "No matching blocks found.\n", buf.String())
}

// memoryDB ranks stored points by cosine similarity.
type memoryDB struct {
	vectordb.Service
	points []vectordb.EmbeddingInput
}

func (m *memoryDB) EnsureCollection(context.Context, string, uint64) error { return nil }

func (m *memoryDB) GetCollection(_ context.Context, name string) (*vectordb.Collection, error) {
	return &vectordb.Collection{Name: name, VectorSize: 26}, nil
}

func (m *memoryDB) Insert(_ context.Context, _ string, inputs []vectordb.EmbeddingInput) error {
	m.points = append(m.points, inputs...)
	return nil
}

func (m *memoryDB) Search(_ context.Context, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	out := make([]vectordb.SearchResult, 0, len(m.points))
	for _, p := range m.points {
		out = append(out, vectordb.SearchResult{ID: p.ID, Score: cosine(req.Vector, p.Vector), Payload: p.Payload})
	}
	sortByScore(out)
	if len(out) > req.TopK {
		out = out[:req.TopK]
	}
	return out, nil
}

func sortByScore(r []vectordb.SearchResult) {
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && r[j].Score > r[j-1].Score; j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// letterEmbedder maps text to letter frequencies.
type letterEmbedder struct{}

func (letterEmbedder) vector(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (e letterEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e letterEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (letterEmbedder) Dimension(context.Context) (int, error) { return 26, nil }
func (letterEmbedder) Model() string                          { return "letters" }

func TestStoreThenSearchReturnsExactRecordFirst(t *testing.T) {
	ctx := context.Background()
	db := &memoryDB{}
	emb := letterEmbedder{}

	records := []blocks.Record{
		{Content: "the lighthouse keeper climbed the stairs", Metadata: blocks.Metadata{BlockID: "a"}},
		{Content: "zebras graze quietly", Metadata: blocks.Metadata{BlockID: "b"}},
		{Content: "a storm approached from the sea", Metadata: blocks.Metadata{BlockID: "c"}},
	}

	loader, err := store.NewLoader(store.DefaultConfig(), db, emb, logger.NewNopLogger())
	require.NoError(t, err)
	_, err = loader.Load(ctx, "c", records, nil)
	require.NoError(t, err)

	s := NewSearcher(Config{Limit: 3}, db, emb, logger.NewNopLogger())
	for _, r := range records {
		results, err := s.Search(ctx, Query{Text: r.Content, Collection: "c"})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, r.Content, results[0].Content)
		assert.Equal(t, r.Metadata.BlockID, results[0].Metadata["block_id"])
		assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	}
}
