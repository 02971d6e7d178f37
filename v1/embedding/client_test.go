package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeServer answers /embeddings with vectors [len(input), i, 1] in reverse
// index order, and records every input it sees.
type fakeServer struct {
	*httptest.Server
	requests atomic.Int32
	inputs   chan []string
	dropLast bool
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{inputs: make(chan []string, 64)}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		fs.requests.Add(1)

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fs.inputs <- req.Input

		n := len(req.Input)
		if fs.dropLast {
			n--
		}
		data := make([]map[string]any, 0, n)
		for i := n - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(req.Input[i])), float32(i), 1},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(fs.Close)
	return fs
}

func newTestClient(t *testing.T, url string, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		Endpoint:     url + "/v1",
		Model:        DefaultModel,
		BatchSize:    32,
		HTTPTimeoutS: 5,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestEmbedDocumentsKeepsInputOrder(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, nil)

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, []float32{1, 0, 1}, vecs[0])
	assert.Equal(t, []float32{3, 1, 1}, vecs[1])
	assert.Equal(t, []float32{2, 2, 1}, vecs[2])
}

func TestEmbedDocumentsBatches(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.BatchSize = 2 })

	vecs, err := c.EmbedDocuments(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	assert.Len(t, vecs, 5)
	assert.Equal(t, int32(3), srv.requests.Load())
	// position within the last batch
	assert.Equal(t, float32(0), vecs[4][1])
}

func TestPrefixes(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, func(cfg *Config) {
		cfg.QueryPrefix = "query: "
		cfg.DocumentPrefix = "passage: "
	})
	ctx := context.Background()

	_, err := c.EmbedQuery(ctx, "lighthouse")
	require.NoError(t, err)
	assert.Equal(t, []string{"query: lighthouse"}, <-srv.inputs)

	_, err = c.EmbedDocuments(ctx, []string{"keeper"})
	require.NoError(t, err)
	assert.Equal(t, []string{"passage: keeper"}, <-srv.inputs)
}

func TestNormalize(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.Normalize = true })

	v, err := c.EmbedQuery(context.Background(), "abc")
	require.NoError(t, err)

	var sum float32
	for _, x := range v {
		sum += x * x
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestEmptyInput(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	_, err := c.EmbedQuery(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = c.EmbedDocuments(ctx, []string{"ok", ""})
	assert.ErrorIs(t, err, ErrEmptyInput)

	vecs, err := c.EmbedDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, srv.requests.Load())
}

func TestCountMismatchIsError(t *testing.T) {
	srv := newFakeServer(t)
	srv.dropLast = true
	c := newTestClient(t, srv.URL, nil)

	_, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "expected 2 embeddings, got 1")
}

func TestDimensionAsksModelOnce(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	dim, err := c.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	dim, err = c.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
	assert.Equal(t, int32(1), srv.requests.Load())
	assert.Equal(t, []string{sampleText}, <-srv.inputs)
}

func TestDimensionFromConfig(t *testing.T) {
	srv := newFakeServer(t)
	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.Dimension = 1024 })

	dim, err := c.Dimension(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1024, dim)
	assert.Zero(t, srv.requests.Load())
}

func TestServerErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL, nil)

	_, err := c.EmbedQuery(context.Background(), "x")
	assert.ErrorContains(t, err, "request to "+srv.URL+"/v1 failed")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Endpoint: "http://x/v1", Model: "m", BatchSize: 1}
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Endpoint = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.BatchSize = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.RequestsPerSecond = -1
	assert.Error(t, bad.Validate())
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, 32, cfg.BatchSize)
	assert.Equal(t, 30, cfg.HTTPTimeoutS)
	assert.Zero(t, cfg.Dimension)
}
