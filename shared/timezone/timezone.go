// Package timezone pins every stay date and timestamp to the resort's local zone
// (APP_TIMEZONE, an IANA name such as "Asia/Kolkata"). Missing or unknown zones fall back to UTC.
package timezone

import (
	"sync"
	"time"

	"resort/config"

	"github.com/rs/zerolog/log"
)

var location = sync.OnceValue(func() *time.Location {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("APP_TIMEZONE not set, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("unknown timezone, using UTC")

		return time.UTC
	}

	log.Debug().Str("timezone", loc.String()).Msg("application timezone loaded")

	return loc
})

// Location returns the configured zone.
func Location() *time.Location {
	return location()
}

func Now() time.Time {
	return time.Now().In(location())
}

// Parse reads value as wall-clock time in the resort zone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location())
}

func Format(t time.Time, layout string) string {
	return t.In(location()).Format(layout)
}
