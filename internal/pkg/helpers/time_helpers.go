package helpers

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a config duration. Empty, malformed and non-positive values
// fall back to defaultDuration; only malformed values are logged.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return defaultDuration
	}

	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	if duration <= 0 {
		return defaultDuration
	}
	return duration
}
