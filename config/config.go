package config

import (
	"errors"
	"fmt"
	"sync"

	"resort/shared/constant"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name          string `envconfig:"APP_NAME"`
		Timezone      string `envconfig:"TIMEZONE"`
		PublicSiteURL string `envconfig:"PUBLIC_SITE_URL"`
		CORS          struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		// TrustedProxies lists CIDRs whose forwarding headers are believed.
		TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
		APIKey         string   `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		SessionSecret    string `envconfig:"SESSION_SECRET"`
		ResetSecret      string `envconfig:"RESET_SECRET"`
		SessionExpireMin int    `envconfig:"SESSION_EXPIRE_MIN" default:"10080"`
		ResetExpireMin   int    `envconfig:"RESET_EXPIRE_MIN"   default:"30"`
	} `envconfig:"JWT"`

	Session struct {
		CookieName string `envconfig:"COOKIE_NAME" default:"vvr_session"`
		Domain     string `envconfig:"DOMAIN"`
		Secure     bool   `envconfig:"SECURE"`
	} `envconfig:"SESSION"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		BookingTopic  string   `envconfig:"BOOKING_TOPIC" default:"booking-events"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	Pricing struct {
		GSTPercent           float64 `envconfig:"GST_PERCENT"            default:"5"`
		ChildRate            int     `envconfig:"CHILD_RATE"             default:"1200"`
		ExtraAdultRate       int     `envconfig:"EXTRA_ADULT_RATE"       default:"1500"`
		CPRate               int     `envconfig:"CP_RATE"                default:"500"`
		MAPPremiumRate       int     `envconfig:"MAP_PREMIUM_RATE"       default:"2000"`
		MAPStandardRate      int     `envconfig:"MAP_STANDARD_RATE"      default:"1000"`
		PaymentBackfillLimit int     `envconfig:"PAYMENT_BACKFILL_LIMIT" default:"10"`
	} `envconfig:"PRICING"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
		} `envconfig:"S3"`
		Razorpay struct {
			KeyID     string `envconfig:"KEY_ID"`
			KeySecret string `envconfig:"KEY_SECRET"`
			Currency  string `envconfig:"CURRENCY" default:"INR"`
		} `envconfig:"RAZORPAY"`
		SMTP struct {
			Enable   bool   `envconfig:"ENABLE"`
			Host     string `envconfig:"HOST"`
			Port     int    `envconfig:"PORT" default:"587"`
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
			From     string `envconfig:"FROM"`
			FromName string `envconfig:"FROM_NAME" default:"Vintage Valley Resort"`
		} `envconfig:"SMTP"`
	} `envconfig:"EXTERNAL"`
}

const minSecretLength = 32

var errMissing = errors.New("missing required setting")

// Load reads the optional dotenv files into the environment, then decodes the environment.
func Load(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			log.Warn().Err(err).Msg("no .env file, using process environment only")
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var loaded = sync.OnceValue(func() *Config {
	cfg, err := Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid service configuration")
	}

	return cfg
})

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	return loaded()
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == constant.ServerEnvProduction
}

// Validate checks secrets and required endpoints. Non-production environments always pass.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}

	var errs []error

	secrets := []struct{ name, value string }{
		{"JWT_SESSION_SECRET", c.JWT.SessionSecret},
		{"JWT_RESET_SECRET", c.JWT.ResetSecret},
	}

	for _, secret := range secrets {
		if len(secret.value) < minSecretLength {
			errs = append(errs, fmt.Errorf("%s must be at least %d characters", secret.name, minSecretLength))
		}
	}

	if c.External.Razorpay.KeyID == "" || c.External.Razorpay.KeySecret == "" {
		errs = append(errs, fmt.Errorf("%w: EXTERNAL_RAZORPAY_KEY_ID and EXTERNAL_RAZORPAY_KEY_SECRET", errMissing))
	}

	if c.DB.Postgres.Write.Host == "" {
		errs = append(errs, fmt.Errorf("%w: DB_POSTGRES_WRITE_HOST", errMissing))
	}

	return errors.Join(errs...)
}
