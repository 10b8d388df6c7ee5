package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

const day = 24 * time.Hour

// units maps the spelled-out and calendar unit names str2duration does not
// know. Months and years use their average Gregorian length.
var units = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": 7 * day, "week": 7 * day, "weeks": 7 * day,
	"M": 2629746 * time.Second, "month": 2629746 * time.Second, "months": 2629746 * time.Second,
	"y": 31556952 * time.Second, "year": 31556952 * time.Second, "years": 31556952 * time.Second,
}

var lookbackTerm = regexp.MustCompile(`(\d+)\s*([A-Za-z]+)`)

// ParseLookback parses a duration such as "30d", "2 weeks", "1month 15d" or "720h".
func ParseLookback(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := str2duration.ParseDuration(s); err == nil {
		return positive(s, d)
	}

	matches := lookbackTerm.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var total time.Duration
	last := 0
	for _, m := range matches {
		if strings.TrimSpace(s[last:m[0]]) != "" {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		n, err := strconv.ParseInt(s[m[2]:m[3]], 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("duration %q is too large", s)
		}
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		name := s[m[4]:m[5]]
		unit, ok := units[name]
		if !ok {
			unit, ok = units[strings.ToLower(name)]
		}
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, name)
		}
		if n > math.MaxInt64/int64(unit) {
			return 0, fmt.Errorf("duration %q is too large", s)
		}
		term := time.Duration(n) * unit
		if total > math.MaxInt64-term {
			return 0, fmt.Errorf("duration %q is too large", s)
		}
		total += term
		last = m[1]
	}
	if strings.TrimSpace(s[last:]) != "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return positive(s, total)
}

func positive(s string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
