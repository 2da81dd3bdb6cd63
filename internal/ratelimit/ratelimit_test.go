package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpRateLimiter(t *testing.T) {
	limiter := &NoOpRateLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "any-key")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	assert.NoError(t, limiter.Close())
}

func TestNewRedisRateLimiter_InvalidURL(t *testing.T) {
	_, err := NewRedisRateLimiter("not a url", 10, time.Minute)
	assert.Error(t, err)
}

func TestNewRedisRateLimiter_Unreachable(t *testing.T) {
	_, err := NewRedisRateLimiter("redis://127.0.0.1:1", 10, time.Minute)
	assert.Error(t, err)
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 3, time.Minute)
	require.NoError(t, err)
	defer limiter.Close()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "trade")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within limit", i)
	}

	allowed, err := limiter.Allow(ctx, "trade")
	require.NoError(t, err)
	assert.False(t, allowed, "request over limit should be rejected")
}

func TestRedisRateLimiter_KeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)

	limiter, err := NewRedisRateLimiter("redis://"+mr.Addr(), 1, time.Minute)
	require.NoError(t, err)
	defer limiter.Close()

	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "trade")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "telegram")
	require.NoError(t, err)
	assert.True(t, allowed, "separate listener key has its own budget")

	allowed, err = limiter.Allow(ctx, "trade")
	require.NoError(t, err)
	assert.False(t, allowed)
}
