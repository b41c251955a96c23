package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/platform/config"
)

func TestNew_EmptyURLMeansNotConfigured(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "not a url"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	reg := prometheus.NewRegistry()

	client, err := New(context.Background(), config.RedisConfig{
		URL:      "redis://" + mr.Addr(),
		PoolSize: 4,
	}, NewPoolMetrics(reg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(context.Background()))
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	client.RecordPoolStats()
	assert.GreaterOrEqual(t, testutil.ToFloat64(client.metrics.totalConns), 1.0)
}

func TestNew_UnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{URL: "redis://" + addr}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
