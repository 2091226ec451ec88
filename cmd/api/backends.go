package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-salon/internal/config"
	"github.com/noah-isme/backend-salon/internal/health"
	"github.com/noah-isme/backend-salon/internal/obs"
	"github.com/noah-isme/backend-salon/internal/ratelimit"
	"github.com/noah-isme/backend-salon/internal/store"
)

const pingTimeout = 2 * time.Second

type backends struct {
	Persister    store.Persister
	Redis        *redis.Client
	LoginLimiter ratelimit.Allower
	Checks       []health.Check

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects the configured snapshot store plus redis when a URL is set.
func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backends, error) {
	b := &backends{}

	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg, logger)
		if err != nil {
			if cfg.StoreBackend == config.BackendRedis {
				return nil, err
			}
			logger.Warn().Err(err).Msg("redis unavailable, analytics cache and shared rate limits disabled")
		} else {
			b.Redis = rdb
			b.closers = append(b.closers, func() { _ = rdb.Close() })
			b.Checks = append(b.Checks, health.Check{Name: "redis", Pinger: redisPinger{rdb}, Timeout: pingTimeout})
		}
	}

	switch cfg.StoreBackend {
	case config.BackendRedis:
		b.Persister = store.RedisPersister{Client: b.Redis, Prefix: cfg.StoreKeyPrefix}
	case config.BackendPostgres:
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.Persister = store.PostgresPersister{Pool: pool}
	default:
		logger.Warn().Msg("using in-memory store, state is lost on restart")
		b.Persister = store.NewMemoryPersister()
	}
	b.Checks = append([]health.Check{{Name: "store", Pinger: b.Persister, Timeout: pingTimeout}}, b.Checks...)

	limiter, err := loginLimiter(cfg, b.Redis, logger)
	if err != nil {
		return nil, err
	}
	b.LoginLimiter = limiter
	return b, nil
}

// loginLimiter picks the login throttle. Shared limits need redis; without it
// every strategy degrades to a per-process fixed window.
func loginLimiter(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) (ratelimit.Allower, error) {
	prefix := cfg.StoreKeyPrefix + "rl"
	switch {
	case rdb != nil && cfg.LoginRateStrategy == config.RateSliding:
		return ratelimit.SlidingWindow{Client: rdb, Prefix: prefix + ":sliding:"}, nil
	case rdb != nil:
		limiter, err := ratelimit.NewRedisLimiter(rdb, prefix)
		if err != nil {
			return nil, fmt.Errorf("login limiter: %w", err)
		}
		return limiter, nil
	}
	if cfg.LoginRateStrategy == config.RateSliding {
		logger.Warn().Msg("sliding login limit needs redis, using in-memory fixed window")
	}
	return ratelimit.NewMemoryLimiter(prefix), nil
}

func openRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if cfg.Obs.EnableTracing {
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			logger.Warn().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.Obs.EnablePrometheus {
		if err := redisotel.InstrumentMetrics(rdb); err != nil {
			logger.Warn().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func openPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pgCfg.ConnConfig.Tracer = obs.PGXTracer{}
	if pgCfg.ConnConfig.RuntimeParams == nil {
		pgCfg.ConnConfig.RuntimeParams = map[string]string{}
	}
	pgCfg.ConnConfig.RuntimeParams["application_name"] = "salon-api"

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }
