package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resort/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
	scanBatch             = 100
)

// Nil is returned by Get on a miss.
const Nil = redis.Nil

// RedisCache stores JSON values with a TTL in seconds. Strings are stored as-is.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, ttl int) error
	Get(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key matching pattern (redis glob syntax).
	Clear(ctx context.Context, pattern string) error
	// Increment bumps a counter and starts its TTL on the first hit of a window.
	Increment(ctx context.Context, key string, ttl int) (int64, error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{client: client, otel: ot}
}

func (c *redisCache) scope(ctx context.Context, op, key string) (context.Context, otel.Scope) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+"."+op)
	scope.SetAttribute(otelCacheKeyAttribute, key)

	return ctx, scope
}

func (c *redisCache) Save(ctx context.Context, key string, value any, ttl int) (err error) {
	ctx, scope := c.scope(ctx, "Save", key)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	payload, ok := value.(string)
	if !ok {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode cache value %s: %w", key, err)
		}

		payload = string(raw)
	}

	if err = c.client.Set(ctx, key, payload, seconds(ttl)).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set cache")

		return fmt.Errorf("failed to set cache value %s: %w", key, err)
	}

	return nil
}

// Get decodes into value, or copies the raw payload when value is a *string. Misses wrap Nil.
func (c *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := c.scope(ctx, "Get", key)
	defer scope.End()

	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil { //nolint:errorlint
			scope.TraceError(err)
		}

		return fmt.Errorf("failed to get cache value %s: %w", key, err)
	}

	if raw, ok := value.(*string); ok {
		*raw = payload

		return nil
	}

	if err = json.Unmarshal([]byte(payload), value); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")

		return fmt.Errorf("failed to decode cache value %s: %w", key, err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := c.scope(ctx, "Delete", key)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache value %s: %w", key, err)
	}

	return nil
}

func (c *redisCache) Clear(ctx context.Context, pattern string) (err error) {
	ctx, scope := c.scope(ctx, "Clear", pattern)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) < scanBatch {
			continue
		}

		if err = c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", pattern, err)
		}

		batch = batch[:0]
	}

	if err = iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", pattern, err)
	}

	if len(batch) > 0 {
		if err = c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", pattern, err)
		}
	}

	return nil
}

func (c *redisCache) Increment(ctx context.Context, key string, ttl int) (count int64, err error) {
	ctx, scope := c.scope(ctx, "Increment", key)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var incr *redis.IntCmd

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, seconds(ttl))

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return incr.Val(), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
