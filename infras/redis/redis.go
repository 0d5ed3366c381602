package redis

import (
	"context"
	"net"
	"time"

	"resort/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// New connects to the primary Redis used by the rate limiter, availability cache and
// session revocation list. The process exits if the first ping fails.
func New(cfg *config.Config) *goRedis.Client {
	client := goRedis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", client.Options().Addr).Msg("failed to connect to redis")
	}

	log.Info().Str("addr", client.Options().Addr).Int("db", client.Options().DB).Msg("connected to redis")

	return client
}

func Options(cfg *config.Config) *goRedis.Options {
	primary := cfg.Cache.Redis.Primary

	return &goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	}
}
