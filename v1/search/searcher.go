package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
	"github.com/Aleph-Alpha/blocksearch/v1/tracer"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// Searcher embeds queries and runs them against the vector store.
type Searcher struct {
	cfg      Config
	db       vectordb.Service
	embedder embedding.Embedder
	log      logger.Logger
	metrics  metrics.MetricsCollector
	tracer   *tracer.Tracer
}

// Params groups the dependencies of NewSearcherFromParams.
type Params struct {
	fx.In

	Config   Config
	DB       vectordb.Service
	Embedder embedding.Embedder
	Logger   logger.Logger
	Metrics  metrics.MetricsCollector `optional:"true"`
	Tracer   *tracer.Tracer           `optional:"true"`
}

// NewSearcherFromParams is the Fx constructor of Searcher.
func NewSearcherFromParams(p Params) *Searcher {
	s := NewSearcher(p.Config, p.DB, p.Embedder, p.Logger)
	s.metrics = p.Metrics
	s.tracer = p.Tracer
	return s
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg Config, db vectordb.Service, embedder embedding.Embedder, log logger.Logger) *Searcher {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	return &Searcher{cfg: cfg, db: db, embedder: embedder, log: log}
}

// Search returns the most similar records ordered by descending score.
// A collection that does not exist yields no results.
func (s *Searcher) Search(ctx context.Context, q Query) ([]Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if q.Collection == "" {
		return nil, fmt.Errorf("search: collection name cannot be empty")
	}
	if q.MinWords < 0 || q.MaxWords < 0 || (q.MaxWords > 0 && q.MinWords > q.MaxWords) {
		return nil, fmt.Errorf("%w: min %d, max %d", ErrInvalidWordRange, q.MinWords, q.MaxWords)
	}

	ctx, span := s.tracer.StartSpan(ctx, "search.query")
	defer span.End()
	if s.metrics != nil {
		defer s.metrics.RecordOperationDuration(time.Now(), "search")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	hits, err := s.db.Search(ctx, vectordb.SearchRequest{
		CollectionName: q.Collection,
		Vector:         vector,
		TopK:           limit,
		ScoreThreshold: q.ScoreThreshold,
		Filters:        BuildFilters(q),
	})
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			ID:       h.ID,
			Score:    h.Score,
			Content:  h.Document(),
			Metadata: h.Metadata(),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if s.metrics != nil {
		s.metrics.ObserveSearchResults(len(results))
	}
	s.tracer.SetAttributes(span, map[string]interface{}{
		"collection": q.Collection,
		"limit":      limit,
		"results":    len(results),
	})
	s.log.DebugWithContext(ctx, "Search finished", nil, map[string]interface{}{
		"collection": q.Collection,
		"limit":      limit,
		"results":    len(results),
	})
	return results, nil
}

// BuildFilters turns the metadata constraints of q into filter conditions.
// Integer-looking values also match integer fields such as word_count. It
// returns nil when nothing is set.
func BuildFilters(q Query) *vectordb.FilterSet {
	keys := make([]string, 0, len(q.Filters))
	for k, values := range q.Filters {
		if len(values) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var conditions []vectordb.FilterCondition
	for _, k := range keys {
		conditions = append(conditions, matchValues(k, q.Filters[k]))
	}
	if q.MinWords > 0 || q.MaxWords > 0 {
		var r vectordb.NumericRange
		if q.MinWords > 0 {
			lo := float64(q.MinWords)
			r.Gte = &lo
		}
		if q.MaxWords > 0 {
			hi := float64(q.MaxWords)
			r.Lte = &hi
		}
		conditions = append(conditions, vectordb.NewMetadataNumericRange("word_count", r))
	}
	if !q.CreatedAfter.IsZero() || !q.CreatedBefore.IsZero() {
		conditions = append(conditions, vectordb.NewMetadataTimeRange("created_at", vectordb.TimeRangeBetween(q.CreatedAfter, q.CreatedBefore)))
	}

	if len(conditions) == 0 {
		return nil
	}
	return vectordb.NewFilterSet(vectordb.Must(conditions...))
}

// matchValues matches key against any of values, as strings and, for the
// integer-looking ones, as integers too.
func matchValues(key string, values []string) vectordb.FilterCondition {
	strs := make([]any, 0, len(values))
	var ints []any
	for _, v := range values {
		strs = append(strs, v)
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			ints = append(ints, n)
		}
	}
	cond := oneOf(key, strs)
	if len(ints) == 0 {
		return cond
	}
	return vectordb.AnyOf(cond, oneOf(key, ints))
}

func oneOf(key string, values []any) vectordb.FilterCondition {
	if len(values) == 1 {
		return vectordb.NewMetadataMatch(key, values[0])
	}
	return vectordb.NewMetadataMatchAny(key, values...)
}

// ParseFilter splits "key=value".
func ParseFilter(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("search: filter %q must look like key=value", s)
	}
	return k, strings.TrimSpace(v), nil
}
