package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &Tracer{tracer: tp, logger: logger.NewNopLogger()}, rec
}

func TestStartSpanRecordsError(t *testing.T) {
	tr, rec := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "store.batch")
	tr.SetAttributes(span, map[string]interface{}{
		"batch.size": 10,
		"collection": "novel_blocks",
		"ratio":      0.5,
		"other":      []string{"x"},
	})
	tr.RecordErrorOnSpan(span, errors.New("upsert failed"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "store.batch", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 4)
}

func TestNilTracerIsNoop(t *testing.T) {
	var tr *Tracer

	ctx, span := tr.StartSpan(context.Background(), "noop")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNewClientWithoutExport(t *testing.T) {
	tr, err := NewClient(Config{ServiceName: "test", AppEnv: "test"}, logger.NewNopLogger())
	require.NoError(t, err)

	_, span := tr.StartSpan(context.Background(), "x")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tr.Shutdown(context.Background()))
}
