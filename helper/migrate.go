// Package helper runs the SQL migrations under migrations/postgres against the write database.
package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"resort/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const source = "file://migrations/postgres"

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStepUp Direction = "step-up"
	DirectionDrop   Direction = "drop"
)

var ErrUnknownDirection = errors.New("unknown migration direction, use up, down, step-up or drop")

func ParseDirection(value string) (Direction, error) {
	switch direction := Direction(value); direction {
	case DirectionUp, DirectionDown, DirectionStepUp, DirectionDrop:
		return direction, nil
	}

	return "", ErrUnknownDirection
}

// DSN builds the golang-migrate connection URL, honouring the database name prefix and
// custom migrations table.
func DSN(cfg *config.Config) string {
	write := cfg.DB.Postgres.Write

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)

	if cfg.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", cfg.DB.Postgres.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + write.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func Migrate(cfg *config.Config, direction Direction) (err error) {
	mig, err := migrate.New(source, DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrator")
		}
	}()

	switch direction {
	case DirectionUp:
		err = mig.Up()
	case DirectionDown:
		err = mig.Steps(-1)
	case DirectionStepUp:
		err = mig.Steps(1)
	case DirectionDrop:
		err = mig.Down()
	default:
		return ErrUnknownDirection
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("direction", string(direction)).Msg("database schema already current")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", direction, err)
	}

	version, dirty, _ := mig.Version()
	log.Info().Str("direction", string(direction)).Uint("version", version).Bool("dirty", dirty).Msg("database migrated")

	return nil
}

func Up(cfg *config.Config) error {
	return Migrate(cfg, DirectionUp)
}
