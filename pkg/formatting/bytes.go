// Package formatting provides human-readable byte sizes and lenient JSON
// parsing for model output.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{
	"B", "KB", "MB",
	"GB", "TB", "PB",
	"EB", "ZB", "YB",
}

var bytesPattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// scale returns n expressed in the largest base-1024 unit not exceeding it.
func scale(n int64) (float64, string) {
	if n <= 0 {
		return 0, units[0]
	}
	f := float64(n)
	i := min(int(math.Floor(math.Log(f)/math.Log(1024))), len(units)-1)
	return f / math.Pow(1024, float64(i)), units[i]
}

// FormatBytes converts a byte count to a human-readable string using base-1024 units.
// Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	size, unit := scale(n)
	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + unit
}

// CompactBytes formats n with at most one decimal and no space before the
// unit, dropping a zero fraction: 20971520 becomes "20MB", 1536 becomes "1.5KB".
func CompactBytes(n int64) string {
	size, unit := scale(n)
	s := strconv.FormatFloat(size, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + unit
}

// ParseBytes parses a human-readable byte size string (e.g., "20MB") into a byte count.
// Supports units B through YB (base-1024). A bare number with no unit is treated as bytes.
// Unit matching is case-insensitive and an optional space between number and unit is allowed.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := bytesPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}
