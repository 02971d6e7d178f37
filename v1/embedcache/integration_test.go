package embedcache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
)

func initializeRedis(ctx context.Context, t *testing.T) (string, int) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, nat.Port("6379/tcp"))
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)
	return host, port
}

func TestRedisCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	host, port := initializeRedis(ctx, t)

	cache, err := NewCache(Config{
		Enabled:     true,
		Host:        host,
		Port:        port,
		TTL:         time.Minute,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	}, logger.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, cache)
	defer cache.Close()

	ctrl := gomock.NewController(t)
	next := embedding.NewMockEmbedder(ctrl)
	next.EXPECT().Model().Return("m").AnyTimes()
	next.EXPECT().EmbedDocuments(gomock.Any(), []string{"a", "b"}).Return([][]float32{{0.5, 1}, {2, -3}}, nil).Times(1)

	e := Wrap(next, cache, embedding.Config{DocumentPrefix: "passage: "}, logger.NewNopLogger())
	for i := 0; i < 2; i++ {
		got, err := e.EmbedDocuments(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.5, 1}, {2, -3}}, got)
	}

	ttl, err := cache.client.TTL(ctx, cacheKey(DefaultKeyPrefix, "m", kindDocument, settings{documentPrefix: "passage: "}.variant(kindDocument), "a")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
