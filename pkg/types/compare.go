package types

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// CompareValues orders two field values by their first element. Empty values
// sort first.
func CompareValues(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return cmp.Compare(len(a), len(b))
	}
	return CompareScalar(a[0], b[0])
}

// CompareScalar compares numerically when both sides are numbers, then as
// times, then as plain text.
func CompareScalar(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	ta, okA := parseScalarTime(a)
	tb, okB := parseScalarTime(b)
	if okA && okB {
		return ta.Compare(tb)
	}
	return strings.Compare(a, b)
}

func parseScalarTime(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, time.DateOnly, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
