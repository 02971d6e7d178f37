package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	return NewMetrics(Config{ServiceName: "test", Namespace: "blocksearch"})
}

func TestIncrementBlocks(t *testing.T) {
	m := newTestMetrics()

	m.IncrementBlocks("stored")
	m.IncrementBlocks("stored")
	m.IncrementBlocks("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.blocksTotal.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocksTotal.WithLabelValues("failed")))
}

func TestRecordOperationDuration(t *testing.T) {
	m := newTestMetrics()

	m.RecordOperationDuration(time.Now().Add(-time.Second), "search")

	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestDefaultAddress(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}

func TestHandlerServesServiceLabel(t *testing.T) {
	m := newTestMetrics()
	m.IncrementEmbeddingRequests("ok")

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `blocksearch_embedding_requests_total{service="test",status="ok"} 1`), body)
}
