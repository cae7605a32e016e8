package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinship/internal/platform/config"
)

func TestOptions(t *testing.T) {
	opts, err := Options(config.RedisConfig{
		URL:          "redis://cache.internal:6380/2",
		PoolSize:     20,
		MinIdleConns: 4,
		DialTimeout:  time.Second,
		ReadTimeout:  200 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 200*time.Millisecond, opts.ReadTimeout)

	_, err = Options(config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
}

func TestNew_DisabledWithoutURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NoError(t, client.Health(context.Background()))
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{
		URL:         "redis://127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
	require.ErrorContains(t, err, "redis ping failed")
}
