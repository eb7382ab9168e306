// Package formatting parses human-written values and loosely formatted
// model output.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// ParseBytes parses a size such as "10MB" or "512 kb" into a byte count
// using base-1024 units. A bare number is taken as bytes; "KiB"-style
// suffixes are accepted as aliases.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	m := bytesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", m[1], err)
	}

	unit := strings.ToUpper(m[2])
	unit = strings.Replace(unit, "IB", "B", 1)
	if unit == "" {
		unit = "B"
	}
	if len(unit) == 1 && unit != "B" {
		unit += "B"
	}

	exp := slices.Index(units, unit)
	if exp < 0 {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	return int64(value * math.Pow(1024, float64(exp))), nil
}

// FormatBytes renders n with the largest base-1024 unit that keeps the
// value at or above one.
func FormatBytes(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}
	exp := min(int(math.Log(float64(n))/math.Log(1024)), len(units)-1)
	v := float64(n) / math.Pow(1024, float64(exp))
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + units[exp]
}
