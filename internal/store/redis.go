package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores each snapshot under Prefix+key.
type RedisPersister struct {
	Client *redis.Client
	Prefix string
}

func (p RedisPersister) key(k string) string { return p.Prefix + k }

// Load implements Persister.
func (p RedisPersister) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := p.Client.Get(ctx, p.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis load %s: %w", key, err)
	}
	return v, true, nil
}

// Save writes the entries in one MULTI/EXEC block.
func (p RedisPersister) Save(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, p.key(e.Key), e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Replace deletes every key under the prefix and writes entries in one
// MULTI/EXEC block.
func (p RedisPersister) Replace(ctx context.Context, entries ...Entry) error {
	var stale []string
	iter := p.Client.Scan(ctx, 0, p.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		stale = append(stale, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	_, err := p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.Del(ctx, stale...)
		}
		for _, e := range entries {
			pipe.Set(ctx, p.key(e.Key), e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}
	return nil
}

// Ping implements Persister.
func (p RedisPersister) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
