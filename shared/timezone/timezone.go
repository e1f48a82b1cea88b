package timezone

import (
	"sync/atomic"
	"time"

	"homecare/config"
	"homecare/shared/constant"

	"github.com/rs/zerolog/log"
)

const defaultTimezone = "UTC"

var appLocation atomic.Pointer[time.Location]

func init() {
	Load(config.Get().App.Timezone)
}

// Load switches the application timezone. Unknown names fall back to UTC.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = defaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Please use standard timezone names like 'Asia/Jakarta', 'UTC', 'America/New_York'")

		loc = time.UTC
	}

	appLocation.Store(loc)

	log.Debug().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// GetLocation returns the current application timezone location
func GetLocation() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now returns the current time in the application timezone
func Now() time.Time {
	return time.Now().In(GetLocation())
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads a wall-clock value as application local time.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Day returns the half-open range [start, end) covering a YYYY-MM-DD calendar day.
func Day(value string) (start, end time.Time, err error) {
	start, err = Parse(constant.DayFormat, value)
	if err != nil {
		return start, end, err
	}

	return start, start.AddDate(0, 0, 1), nil
}
