package main

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/ratelimit"
)

func backendConfig(redisURL, strategy string) *config.Config {
	return &config.Config{
		StoreBackend:      config.BackendMemory,
		StoreKeyPrefix:    "salon:",
		RedisURL:          redisURL,
		LoginRateStrategy: strategy,
	}
}

func TestOpenBackendsSlidingLoginLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := openBackends(context.Background(), backendConfig("redis://"+mr.Addr(), config.RateSliding), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(b.Close)

	require.IsType(t, ratelimit.SlidingWindow{}, b.LoginLimiter)
	ctx := context.Background()
	ok, _, _, err := b.LoginLimiter.Allow(ctx, "login:203.0.113.9", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, ok)
	ok, remaining, _, err := b.LoginLimiter.Allow(ctx, "login:203.0.113.9", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, remaining)
	require.True(t, mr.Exists("salon:rl:sliding:login:203.0.113.9"))
}

func TestOpenBackendsFixedLoginLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := openBackends(context.Background(), backendConfig("redis://"+mr.Addr(), config.RateFixed), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(b.Close)
	require.IsType(t, ratelimit.StoreLimiter{}, b.LoginLimiter)
}

func TestOpenBackendsSlidingWithoutRedisFallsBack(t *testing.T) {
	b, err := openBackends(context.Background(), backendConfig("", config.RateSliding), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(b.Close)
	require.IsType(t, ratelimit.StoreLimiter{}, b.LoginLimiter)
	require.Nil(t, b.Redis)
}
