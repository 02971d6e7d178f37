package embedding

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/metrics"
)

// sampleText is embedded once to learn the model dimension.
const sampleText = "sample text"

// Client is the public entrypoint for computing embeddings.
//
// It talks to any OpenAI-compatible /embeddings endpoint and hides batching,
// rate limiting, prefixes and normalization from the application layer.
type Client struct {
	api     *openai.Client
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
	log     logger.Logger
	metrics metrics.MetricsCollector

	dimMu sync.Mutex
	dim   int
}

var _ Embedder = (*Client)(nil)

// Params groups the dependencies of NewClientFromParams.
type Params struct {
	fx.In

	Config  Config
	Logger  logger.Logger
	Metrics metrics.MetricsCollector `optional:"true"`
}

// NewClientFromParams is the Fx constructor of Client.
func NewClientFromParams(p Params) (*Client, error) {
	c, err := NewClient(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	c.metrics = p.Metrics
	return c, nil
}

// NewClient constructs a Client from Config.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	httpClient := &http.Client{Timeout: cfg.httpTimeout()}
	apiCfg.HTTPClient = httpClient

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		dim:     cfg.Dimension,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// EmbedQuery embeds a single query with the query prefix.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	out, err := c.embed(ctx, []string{c.cfg.QueryPrefix + text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedDocuments embeds texts with the document prefix. Texts are sent in
// chunks of Config.BatchSize; the result keeps input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("text %d: %w", i, ErrEmptyInput)
		}
		inputs[i] = c.cfg.DocumentPrefix + t
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(inputs))
		vecs, err := c.embed(ctx, inputs[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimension returns the vector size, probing the model once when
// EMBEDDING_DIMENSION is not set.
func (c *Client) Dimension(ctx context.Context) (int, error) {
	c.dimMu.Lock()
	defer c.dimMu.Unlock()

	if c.dim > 0 {
		return c.dim, nil
	}

	vecs, err := c.embed(ctx, []string{sampleText})
	if err != nil {
		return 0, fmt.Errorf("measure embedding dimension: %w", err)
	}
	c.dim = len(vecs[0])

	c.log.Debug("Measured embedding dimension", nil, map[string]interface{}{
		"model":     c.cfg.Model,
		"dimension": c.dim,
	})
	return c.dim, nil
}

// embed sends one request and returns the vectors ordered by response index.
func (c *Client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding: rate limiter: %w", err)
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(c.cfg.Model),
	})
	if err != nil {
		c.countRequest("error")
		return nil, fmt.Errorf("embedding: request to %s failed: %w", c.cfg.Endpoint, err)
	}

	if len(resp.Data) != len(inputs) {
		c.countRequest("error")
		return nil, fmt.Errorf("embedding: expected %d embeddings, got %d", len(inputs), len(resp.Data))
	}
	c.countRequest("ok")

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding: empty vector at index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		if c.cfg.Normalize {
			l2normalize(v)
		}
		out[i] = v
	}
	return out, nil
}

func (c *Client) countRequest(status string) {
	if c.metrics != nil {
		c.metrics.IncrementEmbeddingRequests(status)
	}
}

// Close releases idle HTTP connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// l2normalize normalizes a vector to unit length
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
