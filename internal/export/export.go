// Package export writes result tables to CSV and JSON and reads CSV back
// into a table.
package export

import (
	"math"
	"strconv"
	"time"
)

// TimeLayout is the CSV timestamp format. Fractional seconds are written
// only when present.
const TimeLayout = "2006-01-02 15:04:05.999999999"

// FormatCell renders a cell value the way it appears in CSV output. Nil
// becomes the empty string and floats use the shortest fixed notation that
// round-trips.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(TimeLayout)
	default:
		return ""
	}
}
