package config

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultTTL is used when a duration string cannot be parsed.
const DefaultTTL = 15 * time.Minute

var ttlPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL parses durations of the form <integer><s|m|h|d>, e.g. "15m" or
// "7d". Anything else yields DefaultTTL.
func ParseTTL(value string) time.Duration {
	match := ttlPattern.FindStringSubmatch(value)
	if match == nil {
		return DefaultTTL
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		return DefaultTTL
	}

	var unit time.Duration
	switch match[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	default:
		return DefaultTTL
	}

	if int64(n) > math.MaxInt64/int64(unit) {
		return DefaultTTL
	}
	return time.Duration(n) * unit
}
