package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/blocksearch/v1/blocks"
	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
	"github.com/Aleph-Alpha/blocksearch/v1/tracer"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

var (
	errEmptyContent = errors.New("empty content")
	errMissingID    = errors.New("missing block_id")
)

// Loader embeds preprocessed records and upserts them into a collection.
type Loader struct {
	cfg      Config
	db       vectordb.Service
	embedder embedding.Embedder
	log      logger.Logger
	metrics  metrics.MetricsCollector
	tracer   *tracer.Tracer
}

// Params groups the dependencies of NewLoaderFromParams.
type Params struct {
	fx.In

	Config   Config
	DB       vectordb.Service
	Embedder embedding.Embedder
	Logger   logger.Logger
	Metrics  metrics.MetricsCollector `optional:"true"`
	Tracer   *tracer.Tracer           `optional:"true"`
}

// NewLoaderFromParams is the Fx constructor of Loader.
func NewLoaderFromParams(p Params) (*Loader, error) {
	l, err := NewLoader(p.Config, p.DB, p.Embedder, p.Logger)
	if err != nil {
		return nil, err
	}
	l.metrics = p.Metrics
	l.tracer = p.Tracer
	return l, nil
}

// NewLoader creates a Loader.
func NewLoader(cfg Config, db vectordb.Service, embedder embedding.Embedder, log logger.Logger) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loader{
		cfg:      cfg,
		db:       db,
		embedder: embedder,
		log:      log,
	}, nil
}

type indexedRecord struct {
	index int
	blocks.Record
}

// Load stores records in the collection, creating it on first use.
//
// A batch whose embedding or upsert fails is retried one record at a time, so
// a bad record ends up in Report.Failures without stopping the rest. Errors
// returned by Load are fatal: the collection could not be prepared or ctx was
// cancelled.
func (l *Loader) Load(ctx context.Context, collection string, records []blocks.Record, progress Progress) (Report, error) {
	start := time.Now()
	report := Report{Collection: collection, Total: len(records)}
	if collection == "" {
		return report, fmt.Errorf("store: collection name cannot be empty")
	}
	if len(records) == 0 {
		return report, nil
	}
	if l.metrics != nil {
		defer l.metrics.RecordOperationDuration(start, "store")
	}

	dim, err := l.embedder.Dimension(ctx)
	if err != nil {
		return report, fmt.Errorf("store: determine vector size: %w", err)
	}
	if err := l.db.EnsureCollection(ctx, collection, uint64(dim)); err != nil {
		return report, fmt.Errorf("store: prepare collection: %w", err)
	}
	info, err := l.db.GetCollection(ctx, collection)
	if err != nil {
		return report, fmt.Errorf("store: inspect collection: %w", err)
	}
	// A zero size means the collection uses a vector layout we do not read.
	if info.VectorSize > 0 && info.VectorSize != dim {
		return report, fmt.Errorf("store: %w: collection %q holds %d dimensions, model %q produces %d",
			ErrDimensionMismatch, collection, info.VectorSize, l.embedder.Model(), dim)
	}

	l.log.InfoWithContext(ctx, "Storing blocks", nil, map[string]interface{}{
		"collection":  collection,
		"total":       len(records),
		"batch_size":  l.cfg.BatchSize,
		"concurrency": l.cfg.Concurrency,
		"model":       l.embedder.Model(),
	})

	var (
		mu           sync.Mutex
		done         int
		lastReported int
	)
	finishBatch := func(n, stored int, failures []Failure) {
		mu.Lock()
		defer mu.Unlock()

		report.Stored += stored
		report.Failures = append(report.Failures, failures...)
		done += n
		if progress != nil && (done/l.cfg.ProgressEvery > lastReported/l.cfg.ProgressEvery || done == len(records)) {
			lastReported = done
			progress(done, len(records))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)

	for begin := 0; begin < len(records); begin += l.cfg.BatchSize {
		end := min(begin+l.cfg.BatchSize, len(records))
		batch := make([]indexedRecord, 0, end-begin)
		for i := begin; i < end; i++ {
			batch = append(batch, indexedRecord{index: i, Record: records[i]})
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stored, failures := l.storeBatch(gctx, collection, batch)
			finishBatch(len(batch), stored, failures)
			return gctx.Err()
		})
	}

	err = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Index < report.Failures[j].Index })
	report.Duration = time.Since(start)

	for _, f := range report.Failures {
		l.log.WarnWithContext(ctx, "Failed to store block", f.Err, map[string]interface{}{
			"block_id": f.BlockID,
			"index":    f.Index,
		})
	}
	l.log.InfoWithContext(ctx, "Finished storing blocks", nil, map[string]interface{}{
		"collection": collection,
		"stored":     report.Stored,
		"failed":     len(report.Failures),
		"duration":   report.Duration.String(),
	})

	if err != nil {
		return report, fmt.Errorf("store: interrupted after %d of %d records: %w", report.Stored+len(report.Failures), len(records), err)
	}
	return report, nil
}

// storeBatch stores one batch and returns the number stored and the failures.
func (l *Loader) storeBatch(ctx context.Context, collection string, batch []indexedRecord) (int, []Failure) {
	ctx, span := l.tracer.StartSpan(ctx, "store.batch")
	defer span.End()
	l.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"size":       len(batch),
	})

	var (
		failures []Failure
		valid    = make([]indexedRecord, 0, len(batch))
	)
	for _, r := range batch {
		if strings.TrimSpace(r.Content) == "" {
			failures = append(failures, l.fail(r, errEmptyContent))
			continue
		}
		if r.Metadata.BlockID == "" {
			failures = append(failures, l.fail(r, errMissingID))
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return 0, failures
	}

	err := l.upsert(ctx, collection, valid)
	if err == nil {
		l.count("stored", len(valid))
		return len(valid), failures
	}
	if ctx.Err() != nil {
		for _, r := range valid {
			failures = append(failures, l.fail(r, ctx.Err()))
		}
		return 0, failures
	}
	l.tracer.RecordErrorOnSpan(span, err)
	l.log.DebugWithContext(ctx, "Batch failed, retrying records one by one", err, map[string]interface{}{
		"collection": collection,
		"size":       len(valid),
	})

	stored := 0
	for _, r := range valid {
		if err := l.upsert(ctx, collection, []indexedRecord{r}); err != nil {
			failures = append(failures, l.fail(r, err))
			continue
		}
		l.count("stored", 1)
		stored++
	}
	return stored, failures
}

// upsert embeds the records and writes them in one request.
func (l *Loader) upsert(ctx context.Context, collection string, records []indexedRecord) error {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}

	vectors, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(records) {
		return fmt.Errorf("embed: expected %d vectors, got %d", len(records), len(vectors))
	}

	inputs := make([]vectordb.EmbeddingInput, len(records))
	for i, r := range records {
		inputs[i] = vectordb.EmbeddingInput{
			ID:      PointID(r.Metadata.BlockID),
			Vector:  vectors[i],
			Payload: Payload(r.Record),
		}
	}

	if err := l.db.Insert(ctx, collection, inputs); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (l *Loader) fail(r indexedRecord, err error) Failure {
	l.count("failed", 1)
	return Failure{Index: r.index, BlockID: r.Metadata.BlockID, Err: err}
}

func (l *Loader) count(status string, n int) {
	if l.metrics == nil {
		return
	}
	for i := 0; i < n; i++ {
		l.metrics.IncrementBlocks(status)
	}
}
