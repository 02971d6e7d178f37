package embedcache

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

// Embedder serves embeddings from the cache and asks the wrapped embedder
// only for misses. A failing cache degrades to the wrapped embedder.
type Embedder struct {
	next     embedding.Embedder
	store    vectorStore
	prefix   string
	settings settings
	log      logger.Logger
}

// Wrap returns next with a cache in front of it, or next itself when
// cache is nil. Entries are keyed by the prefixes and normalization in cfg,
// so changing them never serves vectors computed under the old settings.
func Wrap(next embedding.Embedder, cache *Cache, cfg embedding.Config, log logger.Logger) embedding.Embedder {
	if cache == nil {
		return next
	}
	return newEmbedder(next, cache, cache.cfg.KeyPrefix, settingsOf(cfg), log)
}

func newEmbedder(next embedding.Embedder, store vectorStore, prefix string, s settings, log logger.Logger) *Embedder {
	return &Embedder{next: next, store: store, prefix: prefix, settings: s, log: log}
}

func (e *Embedder) key(kind, text string) string {
	return cacheKey(e.prefix, e.next.Model(), kind, e.settings.variant(kind), text)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = e.key(kindDocument, t)
	}

	out, err := e.store.get(ctx, keys)
	if err != nil {
		e.log.WarnWithContext(ctx, "Embedding cache read failed", err, nil)
		out = nil
	}
	if out == nil {
		out = make([][]float32, len(texts))
	}

	var (
		missIdx   []int
		missTexts []string
	)
	for i, v := range out {
		if v == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := e.next.EmbedDocuments(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embedcache: expected %d vectors, got %d", len(missTexts), len(vectors))
	}

	entries := make(map[string][]float32, len(missIdx))
	for j, i := range missIdx {
		out[i] = vectors[j]
		entries[keys[i]] = vectors[j]
	}
	e.remember(ctx, entries)

	e.log.DebugWithContext(ctx, "Embedding cache lookup", nil, map[string]interface{}{
		"hits":   len(texts) - len(missTexts),
		"misses": len(missTexts),
	})
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := e.key(kindQuery, text)

	cached, err := e.store.get(ctx, []string{key})
	if err != nil {
		e.log.WarnWithContext(ctx, "Embedding cache read failed", err, nil)
	} else if len(cached) == 1 && cached[0] != nil {
		return cached[0], nil
	}

	v, err := e.next.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	e.remember(ctx, map[string][]float32{key: v})
	return v, nil
}

func (e *Embedder) remember(ctx context.Context, entries map[string][]float32) {
	if err := e.store.set(ctx, entries); err != nil {
		e.log.WarnWithContext(ctx, "Embedding cache write failed", err, map[string]interface{}{"entries": len(entries)})
	}
}

func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	return e.next.Dimension(ctx)
}

func (e *Embedder) Model() string {
	return e.next.Model()
}
