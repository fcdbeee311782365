// Package stats computes the summaries shown on the monitoring dashboard:
// per-site box statistics and daily mean trends over a result table.
package stats

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CoerceNumber converts a cell value to a float64. Numeric strings may carry
// thousands separators. Empty, nil, and non-finite values report false.
func CoerceNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToMDY reduces a date-time such as "10/1/2020 12:00:00 AM" to a zero-padded
// "10/01/2020". Time values are formatted directly.
func ToMDY(v any) (string, bool) {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return "", false
		}
		return t.Format("01/02/2006"), true
	}

	s, ok := v.(string)
	if !ok {
		return "", false
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}

	if t, err := time.Parse(time.DateOnly, fields[0]); err == nil {
		return t.Format("01/02/2006"), true
	}

	parts := strings.Split(fields[0], "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return pad2(parts[0]) + "/" + pad2(parts[1]) + "/" + parts[2], true
}

// MDYSortKey turns "mm/dd/yyyy" into the sortable integer yyyymmdd.
func MDYSortKey(mdy string) (int, bool) {
	parts := strings.Split(mdy, "/")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return 0, false
	}
	key, err := strconv.Atoi(parts[2] + parts[0] + parts[1])
	if err != nil {
		return 0, false
	}
	return key, true
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

// normalizeSpace trims s and collapses internal whitespace runs.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
