// Package plan implements the plan compiler and scheduler core: parsing the
// step grammar, resolving symbolic pace/heart-rate zones into concrete
// ranges, compiling workouts, indexing them by week/session and assigning
// calendar dates. Everything in this package is a pure in-memory transform;
// persistence and the remote account live behind interfaces elsewhere.
package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	unitDurationPattern = regexp.MustCompile(`^(\d+)\s*(min|h|m|s)$`)
	clockPattern        = regexp.MustCompile(`^\d{1,2}:\d{1,2}(?::\d{1,2})?$`)
	distancePattern     = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(km|m)$`)
	rawSecondsPattern   = regexp.MustCompile(`^\d+$`)
)

// ParseDuration converts a duration string to seconds. Accepted forms:
// "mm:ss", "hh:mm:ss", "2min", "1h", "2m", "30s" and raw seconds ("120").
func ParseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)

	if m := unitDurationPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "h":
			return n * 3600, nil
		case "min", "m":
			return n * 60, nil
		default:
			return n, nil
		}
	}

	if rawSecondsPattern.MatchString(s) {
		n, _ := strconv.Atoi(s)
		return n, nil
	}

	if clockPattern.MatchString(s) {
		parts := strings.Split(s, ":")
		total := 0
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			total = total*60 + n
		}
		return total, nil
	}

	return 0, fmt.Errorf("invalid duration %q: must use mm:ss, hh:mm:ss or <n>(h|min|s)", s)
}

// FormatMMSS renders a number of seconds as "mm:ss" with zero padding.
// Values of an hour or more keep accumulating minutes ("75:30").
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseDistance converts a distance string ("10km", "2.5km", "400m") to meters.
func ParseDistance(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := distancePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid distance %q: must use <n>km or <n>m", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q", s)
	}
	if m[2] == "km" {
		value *= 1000
	}
	return value, nil
}

// PaceFromDistTime derives a pace (seconds per kilometer) from a
// "<distance> in <time>" expression, e.g. "10km in 45:00" -> 270.
func PaceFromDistTime(expr string) (float64, error) {
	idx := strings.Index(expr, " in ")
	if idx < 0 {
		return 0, fmt.Errorf("invalid distance/time expression %q: must use <distance> in <time>", expr)
	}
	meters, err := ParseDistance(expr[:idx])
	if err != nil {
		return 0, err
	}
	seconds, err := ParseDuration(expr[idx+4:])
	if err != nil {
		return 0, err
	}
	if meters <= 0 {
		return 0, fmt.Errorf("invalid distance/time expression %q: zero distance", expr)
	}
	return float64(seconds) / (meters / 1000), nil
}

// PaceToKmph converts a pace in seconds per kilometer to km/h.
func PaceToKmph(secPerKm float64) float64 {
	return 3600 / secPerKm
}

// NormalizePace zero-pads a pace string to "mm:ss" (or "hh:mm:ss") and
// validates that minute and second components stay below 60.
func NormalizePace(s string) (string, error) {
	if !clockPattern.MatchString(strings.TrimSpace(s)) {
		return "", fmt.Errorf("invalid pace %q", s)
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	padded := make([]string, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid pace %q", s)
		}
		if i >= len(parts)-2 && n >= 60 {
			return "", fmt.Errorf("invalid pace %q: minutes and seconds must be below 60", s)
		}
		padded[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(padded, ":"), nil
}
