package qdrant

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/search"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

// QdrantContainer represents a Qdrant container for testing
type QdrantContainer struct {
	testcontainers.Container
	Host string
	Port string
}

// setupQdrantContainer sets up a Qdrant container for testing
func setupQdrantContainer(ctx context.Context) (*QdrantContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: fmt.Sprintf("%d", port)}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.13.0",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := c.MappedPort(ctx, "6334")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	if err := waitForQdrantReady(host, mappedPort.Port(), 30*time.Second); err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &QdrantContainer{
		Container: c,
		Host:      host,
		Port:      mappedPort.Port(),
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForQdrantReady attempts to connect to Qdrant until it's ready or times out
func waitForQdrantReady(host, port string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for Qdrant to be ready after %s", timeout)
}

func generateRandomVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}

func TestQdrantWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := qc.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	t.Setenv("QDRANT_URL", "http://"+net.JoinHostPort(qc.Host, qc.Port))
	t.Setenv("QDRANT_TIMEOUT", "10s")

	var client *QdrantClient
	app := fxtest.New(t,
		fx.Provide(func() logger.Logger { return logger.NewNopLogger() }),
		FXModule,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, client)
	const dim = 64

	t.Run("EnsureCollection", func(t *testing.T) {
		require.NoError(t, client.EnsureCollection(ctx, "test_ensure", dim))
		// second call is a no-op
		require.NoError(t, client.EnsureCollection(ctx, "test_ensure", dim))
		assert.Error(t, client.EnsureCollection(ctx, "", dim))

		info, err := client.GetCollection(ctx, "test_ensure")
		require.NoError(t, err)
		assert.Equal(t, dim, info.VectorSize)
		assert.Equal(t, "Cosine", info.Distance)
	})

	t.Run("InsertSearchScroll", func(t *testing.T) {
		collection := "test_crud"
		require.NoError(t, client.EnsureCollection(ctx, collection, dim))

		id := uuid.NewString()
		in := vectordb.EmbeddingInput{
			ID:     id,
			Vector: generateRandomVector(dim),
			Payload: map[string]any{
				vectordb.PayloadDocument: "the lighthouse keeper",
				vectordb.PayloadMetadata: map[string]any{
					"block_id":   "b-1",
					"word_count": 3,
					"created_at": "2024-05-01T10:00:00Z",
				},
			},
		}
		other := vectordb.EmbeddingInput{
			ID:     uuid.NewString(),
			Vector: generateRandomVector(dim),
			Payload: map[string]any{
				vectordb.PayloadDocument: "a different block",
				vectordb.PayloadMetadata: map[string]any{"block_id": "b-2"},
			},
		}
		require.NoError(t, client.Insert(ctx, collection, []vectordb.EmbeddingInput{in, other}))

		results, err := client.Search(ctx, vectordb.SearchRequest{
			CollectionName: collection,
			Vector:         in.Vector,
			TopK:           5,
		})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, id, results[0].ID)
		assert.Greater(t, results[0].Score, float32(0.99))
		assert.Equal(t, "the lighthouse keeper", results[0].Document())
		assert.Equal(t, "b-1", results[0].Metadata()["block_id"])
		assert.EqualValues(t, 3, results[0].Metadata()["word_count"])

		filtered, err := client.Search(ctx, vectordb.SearchRequest{
			CollectionName: collection,
			Vector:         in.Vector,
			TopK:           5,
			Filters:        vectordb.NewFilterSet(vectordb.Must(vectordb.NewMetadataMatch("block_id", "b-2"))),
		})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, other.ID, filtered[0].ID)

		all, err := client.Scroll(ctx, collection)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("MetadataFilters", func(t *testing.T) {
		collection := "test_filters"
		require.NoError(t, client.EnsureCollection(ctx, collection, dim))

		points := []map[string]any{
			{"block_id": "a", "word_count": 5, "created_at": "2024-01-10T08:00:00Z"},
			{"block_id": "b", "word_count": 42, "created_at": "2024-03-05T12:30:00Z"},
			{"block_id": "c", "word_count": 300, "created_at": "2024-06-01T00:00:00Z"},
			{"block_id": "42", "word_count": 7},
		}
		inputs := make([]vectordb.EmbeddingInput, len(points))
		for i, meta := range points {
			inputs[i] = vectordb.EmbeddingInput{
				ID:     uuid.NewString(),
				Vector: generateRandomVector(dim),
				Payload: map[string]any{
					vectordb.PayloadDocument: fmt.Sprintf("block %d", i),
					vectordb.PayloadMetadata: meta,
				},
			}
		}
		require.NoError(t, client.Insert(ctx, collection, inputs))

		blockIDs := func(t *testing.T, q search.Query) []string {
			t.Helper()
			results, err := client.Search(ctx, vectordb.SearchRequest{
				CollectionName: collection,
				Vector:         generateRandomVector(dim),
				TopK:           10,
				Filters:        search.BuildFilters(q),
			})
			require.NoError(t, err)
			ids := make([]string, 0, len(results))
			for _, r := range results {
				ids = append(ids, fmt.Sprint(r.Metadata()["block_id"]))
			}
			sort.Strings(ids)
			return ids
		}

		tests := []struct {
			name string
			q    search.Query
			want []string
		}{
			{
				name: "integer filter value matches integer field",
				q:    search.Query{Filters: map[string][]string{"word_count": {"42"}}},
				want: []string{"b"},
			},
			{
				name: "integer filter value matches string field",
				q:    search.Query{Filters: map[string][]string{"block_id": {"42"}}},
				want: []string{"42"},
			},
			{
				name: "repeated string values",
				q:    search.Query{Filters: map[string][]string{"block_id": {"a", "c"}}},
				want: []string{"a", "c"},
			},
			{
				name: "repeated integer values",
				q:    search.Query{Filters: map[string][]string{"word_count": {"5", "300"}}},
				want: []string{"a", "c"},
			},
			{
				name: "word count range",
				q:    search.Query{MinWords: 6, MaxWords: 100},
				want: []string{"42", "b"},
			},
			{
				name: "created_at window on unindexed strings",
				q: search.Query{
					CreatedAfter:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
					CreatedBefore: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				},
				want: []string{"b"},
			},
			{
				name: "created_at lower bound is inclusive",
				q:    search.Query{CreatedAfter: time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)},
				want: []string{"b", "c"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, blockIDs(t, tt.q))
			})
		}
	})

	t.Run("UpsertOverwritesSameID", func(t *testing.T) {
		collection := "test_overwrite"
		require.NoError(t, client.EnsureCollection(ctx, collection, dim))

		id := uuid.NewString()
		for _, text := range []string{"first", "second"} {
			require.NoError(t, client.Insert(ctx, collection, []vectordb.EmbeddingInput{{
				ID:      id,
				Vector:  generateRandomVector(dim),
				Payload: map[string]any{vectordb.PayloadDocument: text},
			}}))
		}

		all, err := client.Scroll(ctx, collection)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "second", all[0].Document())
	})

	t.Run("BatchLargerThanChunk", func(t *testing.T) {
		collection := "test_batch"
		require.NoError(t, client.EnsureCollection(ctx, collection, dim))

		inputs := make([]vectordb.EmbeddingInput, defaultBatchSize+50)
		for i := range inputs {
			inputs[i] = vectordb.EmbeddingInput{
				ID:     uuid.NewString(),
				Vector: generateRandomVector(dim),
			}
		}
		require.NoError(t, client.Insert(ctx, collection, inputs))

		all, err := client.Scroll(ctx, collection)
		require.NoError(t, err)
		assert.Len(t, all, len(inputs))
	})

	t.Run("MissingCollection", func(t *testing.T) {
		results, err := client.Search(ctx, vectordb.SearchRequest{
			CollectionName: "does_not_exist",
			Vector:         generateRandomVector(dim),
			TopK:           3,
		})
		require.NoError(t, err)
		assert.Empty(t, results)

		exists, err := client.CollectionExists(ctx, "does_not_exist")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
