package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Fetch reads key through c. On a miss, or any read error, it calls load and stores the
// result in the background. Load errors are returned as-is and never cached.
func Fetch[T any](ctx context.Context, c RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	go func(ctx context.Context) {
		if err := c.Save(ctx, key, value, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to fill cache")
		}
	}(context.WithoutCancel(ctx))

	return value, nil
}
