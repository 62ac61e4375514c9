package flux

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses an ISO-8601 duration into a time.Duration. Weeks,
// days and the time components are supported; calendar years and months have
// no fixed length and are rejected.
func ParseDuration(iso string) (time.Duration, error) {
	s := strings.TrimSpace(iso)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid duration %q", iso)
	}
	s = s[1:]

	datePart := s
	timePart := ""
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
		if timePart == "" {
			return 0, fmt.Errorf("invalid duration %q: empty time part", iso)
		}
	}

	var total time.Duration
	consume := func(part string, units map[byte]time.Duration, order string) error {
		rest := part
		lastIdx := -1
		for rest != "" {
			i := strings.IndexAny(rest, order)
			if i <= 0 {
				return fmt.Errorf("invalid duration %q", iso)
			}
			unit := rest[i]
			idx := strings.IndexByte(order, unit)
			if idx <= lastIdx {
				return fmt.Errorf("invalid duration %q: components out of order", iso)
			}
			lastIdx = idx

			value, err := strconv.ParseFloat(rest[:i], 64)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", iso, err)
			}
			total += time.Duration(value * float64(units[unit]))
			rest = rest[i+1:]
		}
		return nil
	}

	if err := consume(datePart, map[byte]time.Duration{
		'W': 7 * 24 * time.Hour,
		'D': 24 * time.Hour,
	}, "WD"); err != nil {
		return 0, err
	}
	if err := consume(timePart, map[byte]time.Duration{
		'H': time.Hour,
		'M': time.Minute,
		'S': time.Second,
	}, "HMS"); err != nil {
		return 0, err
	}

	if neg {
		total = -total
	}
	return total, nil
}
