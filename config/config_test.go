package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_ENV", "development")
	t.Setenv("APP_RATE_LIMITER_MAX_REQUESTS", "120")
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "https://vintagevalley.in,http://localhost:3000")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 120, cfg.App.RateLimiter.MaxRequests)
	assert.Equal(t, []string{"https://vintagevalley.in", "http://localhost:3000"}, cfg.App.CORS.AllowedOrigins)
	assert.Equal(t, "INR", cfg.External.Razorpay.Currency)
	assert.Equal(t, 10080, cfg.JWT.SessionExpireMin)
	assert.InDelta(t, 5.0, cfg.Pricing.GSTPercent, 0)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("CACHE_TTL", "an hour")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	secret := strings.Repeat("s", 32)

	production := func() *config.Config {
		cfg := &config.Config{}
		cfg.Server.Env = "production"
		cfg.JWT.SessionSecret = secret
		cfg.JWT.ResetSecret = secret
		cfg.External.Razorpay.KeyID = "rzp_live_x"
		cfg.External.Razorpay.KeySecret = "shh"
		cfg.DB.Postgres.Write.Host = "db"

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{name: "complete", mutate: func(*config.Config) {}},
		{
			name:    "short session secret",
			mutate:  func(cfg *config.Config) { cfg.JWT.SessionSecret = "short" },
			wantErr: "JWT_SESSION_SECRET",
		},
		{
			name:    "missing razorpay credentials",
			mutate:  func(cfg *config.Config) { cfg.External.Razorpay.KeySecret = "" },
			wantErr: "EXTERNAL_RAZORPAY_KEY_SECRET",
		},
		{
			name:    "missing database",
			mutate:  func(cfg *config.Config) { cfg.DB.Postgres.Write.Host = "" },
			wantErr: "DB_POSTGRES_WRITE_HOST",
		},
		{
			name: "development skips checks",
			mutate: func(cfg *config.Config) {
				cfg.Server.Env = "development"
				cfg.JWT.SessionSecret = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := production()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
