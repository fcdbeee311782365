package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/isws/wqrun/internal/database"
)

// Default dashboard column names.
const (
	DefaultParamColumn = "ParamName"
	DefaultSiteColumn  = "Name"
	DefaultValueColumn = "Result_Value"
	DefaultDateColumn  = "Start_Date"
	DefaultMinCount    = 10
)

// BoxOptions selects the rows summarized by BoxStats.
type BoxOptions struct {
	Param       string
	ParamColumn string
	SiteColumn  string
	ValueColumn string
	// MinCount drops sites with fewer samples. Zero means DefaultMinCount;
	// a negative value keeps every site.
	MinCount int
}

func (o BoxOptions) withDefaults() BoxOptions {
	if o.ParamColumn == "" {
		o.ParamColumn = DefaultParamColumn
	}
	if o.SiteColumn == "" {
		o.SiteColumn = DefaultSiteColumn
	}
	if o.ValueColumn == "" {
		o.ValueColumn = DefaultValueColumn
	}
	if o.MinCount == 0 {
		o.MinCount = DefaultMinCount
	}
	return o
}

// Box holds the five-number summary and mean of one site's values.
type Box struct {
	Site   string
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Mean   float64
	Q3     float64
	Max    float64
}

// BoxStats filters t to rows of the requested parameter, compares names
// with whitespace normalized, groups the numeric values by site, and
// summarizes each site with at least MinCount samples. Results are sorted
// by site name.
func BoxStats(t *database.Table, opts BoxOptions) ([]Box, error) {
	opts = opts.withDefaults()

	idx, err := columnIndexes(t, opts.ParamColumn, opts.SiteColumn, opts.ValueColumn)
	if err != nil {
		return nil, err
	}
	paramIdx, siteIdx, valueIdx := idx[0], idx[1], idx[2]

	target := normalizeSpace(opts.Param)
	groups := make(map[string][]float64)

	for _, row := range t.Rows {
		param := normalizeSpace(cellString(row[paramIdx]))
		if param == "" || param != target {
			continue
		}
		v, ok := CoerceNumber(row[valueIdx])
		if !ok {
			continue
		}
		site := strings.TrimSpace(cellString(row[siteIdx]))
		if site == "" {
			continue
		}
		groups[site] = append(groups[site], v)
	}

	out := make([]Box, 0, len(groups))
	for site, values := range groups {
		if len(values) < opts.MinCount {
			continue
		}
		sort.Float64s(values)
		out = append(out, Box{
			Site:   site,
			Count:  len(values),
			Min:    values[0],
			Q1:     QuantileSorted(values, 0.25),
			Median: QuantileSorted(values, 0.5),
			Mean:   stat.Mean(values, nil),
			Q3:     QuantileSorted(values, 0.75),
			Max:    values[len(values)-1],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Site < out[j].Site })
	return out, nil
}

// QuantileSorted returns the p-quantile of ascending values using linear
// interpolation between the closest ranks, (n-1)*p. It returns NaN for an
// empty slice.
func QuantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 || n == 1 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	i := float64(n-1) * p
	i0 := int(math.Floor(i))
	lo, hi := sorted[i0], sorted[i0+1]
	return lo + (hi-lo)*(i-float64(i0))
}

func columnIndexes(t *database.Table, names ...string) ([]int, error) {
	if t == nil {
		return nil, fmt.Errorf("no result table")
	}
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		idx[i] = t.ColumnIndex(name)
		if idx[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
