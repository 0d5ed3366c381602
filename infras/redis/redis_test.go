package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resort/config"
	"resort/infras/redis"
)

func TestOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Redis.Primary.Host = "cache.internal"
	cfg.Cache.Redis.Primary.Port = "6380"
	cfg.Cache.Redis.Primary.Password = "hunter2"
	cfg.Cache.Redis.Primary.DB = 3

	opts := redis.Options(cfg)

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "hunter2", opts.Password)
	assert.Equal(t, 3, opts.DB)
}
