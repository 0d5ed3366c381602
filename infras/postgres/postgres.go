package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"time"

	"resort/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConns    = 10
	maxOpenConns    = 20
	connMaxLifetime = 30 * time.Minute
)

// Connection splits reads from writes. Read falls back to the writer when no replica host is set.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint is one postgres server as configured under DB_POSTGRES_READ_* or DB_POSTGRES_WRITE_*.
type Endpoint struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Timezone string
	SSLMode  string
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	write := Endpoint(pg.Write)
	write.Name = pg.Prefix + write.Name

	conn := &Connection{Write: connect("write", write, pg.MaxRetry, pg.RetryWaitTime)}

	if pg.Read.Host == "" {
		conn.Read = conn.Write

		return conn
	}

	read := Endpoint(pg.Read)
	read.Name = pg.Prefix + read.Name
	conn.Read = connect("read", read, pg.MaxRetry, pg.RetryWaitTime)

	return conn
}

// DSN renders a lib/pq connection URL. Timezone becomes the session TimeZone so DATE columns
// are read in the resort's zone.
func (e Endpoint) DSN() string {
	query := url.Values{}
	if e.SSLMode != "" {
		query.Set("sslmode", e.SSLMode)
	}

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(role string, endpoint Endpoint, maxRetry, waitSeconds int) *sqlx.DB {
	logger := log.With().Str("role", role).Str("host", endpoint.Host).Str("db", endpoint.Name).Logger()
	attempts := max(maxRetry, 1)

	for attempt := 1; ; attempt++ {
		db, err := sqlx.Connect("postgres", endpoint.DSN())
		if err == nil {
			db.SetMaxIdleConns(maxIdleConns)
			db.SetMaxOpenConns(maxOpenConns)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("connected to postgres")

			return db
		}

		if attempt >= attempts {
			logger.Fatal().Err(err).Int("attempts", attempt).Msg("giving up on postgres")
		}

		logger.Warn().Err(err).Int("attempt", attempt).Msg("failed to connect to postgres, retrying")
		time.Sleep(time.Duration(waitSeconds) * time.Second)
	}
}
