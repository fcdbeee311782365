// Package series partitions a result table into per-station time series and
// computes the panel layout used to draw them.
package series

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/stats"
)

// Columns names the table columns read by Group.
type Columns struct {
	Time    string
	Station string
	Field   string
}

// Missing returns the names in cols that t does not have, in the order time,
// field, station.
func (c Columns) Missing(t *database.Table) []string {
	var missing []string
	for _, name := range []string{c.Time, c.Field, c.Station} {
		if t == nil || !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Point is one observation of the plotted field.
type Point struct {
	Time  time.Time
	Value float64
}

// Station is the series of one monitoring station.
type Station struct {
	ID     string
	Points []Point
}

// Label is the legend entry for the station.
func (s Station) Label() string {
	return "Station " + s.ID
}

// Title is the panel title for the station.
func (s Station) Title(stationColumn string) string {
	return stationColumn + " = " + s.ID
}

// Group partitions the rows of t by station. Stations appear in the order
// they are first seen and their points keep the table's row order. Rows
// whose timestamp or value cannot be read are skipped.
func Group(t *database.Table, cols Columns) ([]Station, error) {
	if missing := cols.Missing(t); len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	ti := t.ColumnIndex(cols.Time)
	si := t.ColumnIndex(cols.Station)
	fi := t.ColumnIndex(cols.Field)

	var stations []Station
	index := make(map[string]int)

	for _, row := range t.Rows {
		ts, ok := ParseTime(row[ti])
		if !ok {
			continue
		}
		v, ok := stats.CoerceNumber(row[fi])
		if !ok {
			continue
		}
		if row[si] == nil {
			continue
		}
		id := StationID(row[si])

		i, seen := index[id]
		if !seen {
			i = len(stations)
			index[id] = i
			stations = append(stations, Station{ID: id})
		}
		stations[i].Points = append(stations[i].Points, Point{Time: ts, Value: v})
	}

	return stations, nil
}

// StationID formats a station cell. Whole floats print without a fraction
// so 403609.0 and 403609 name the same station.
func StationID(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006",
	time.DateOnly,
}

// ParseTime reads a timestamp cell. Strings are tried against the layouts
// the monitoring exports use.
func ParseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// FromDailyMeans turns daily site means into one series per site, in the
// order of sites. Days without a mean for a site are left out of its series.
func FromDailyMeans(points []stats.DailyPoint, sites []string) []Station {
	out := make([]Station, 0, len(sites))
	for _, site := range sites {
		s := Station{ID: site}
		for _, p := range points {
			v, ok := p.Means[site]
			if !ok {
				continue
			}
			day, err := time.Parse("01/02/2006", p.Date)
			if err != nil {
				continue
			}
			s.Points = append(s.Points, Point{Time: day, Value: v})
		}
		out = append(out, s)
	}
	return out
}
