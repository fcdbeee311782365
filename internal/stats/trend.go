package stats

import (
	"sort"

	"github.com/isws/wqrun/internal/database"
)

// TrendOptions selects the rows averaged by DailyMeans.
type TrendOptions struct {
	Param       string
	Sites       []string
	ParamColumn string
	SiteColumn  string
	ValueColumn string
	DateColumn  string
}

func (o TrendOptions) withDefaults() TrendOptions {
	if o.ParamColumn == "" {
		o.ParamColumn = DefaultParamColumn
	}
	if o.SiteColumn == "" {
		o.SiteColumn = DefaultSiteColumn
	}
	if o.ValueColumn == "" {
		o.ValueColumn = DefaultValueColumn
	}
	if o.DateColumn == "" {
		o.DateColumn = DefaultDateColumn
	}
	return o
}

// DailyPoint is the mean value of each site on one calendar day. Sites with
// no sample that day are absent from Means.
type DailyPoint struct {
	Date  string
	Key   int
	Means map[string]float64
}

// DailyMeans buckets the requested parameter's values by M/D/Y date and
// site, averages each bucket, and returns the days in ascending order.
func DailyMeans(t *database.Table, opts TrendOptions) ([]DailyPoint, error) {
	opts = opts.withDefaults()

	idx, err := columnIndexes(t, opts.ParamColumn, opts.SiteColumn, opts.ValueColumn, opts.DateColumn)
	if err != nil {
		return nil, err
	}
	paramIdx, siteIdx, valueIdx, dateIdx := idx[0], idx[1], idx[2], idx[3]

	sites := make(map[string]bool, len(opts.Sites))
	for _, s := range opts.Sites {
		sites[s] = true
	}

	type acc struct {
		sum float64
		n   int
	}
	buckets := make(map[string]map[string]*acc)

	for _, row := range t.Rows {
		if cellString(row[paramIdx]) != opts.Param {
			continue
		}
		site := cellString(row[siteIdx])
		if !sites[site] {
			continue
		}
		mdy, ok := ToMDY(row[dateIdx])
		if !ok {
			continue
		}
		v, ok := CoerceNumber(row[valueIdx])
		if !ok {
			continue
		}

		day := buckets[mdy]
		if day == nil {
			day = make(map[string]*acc)
			buckets[mdy] = day
		}
		a := day[site]
		if a == nil {
			a = &acc{}
			day[site] = a
		}
		a.sum += v
		a.n++
	}

	out := make([]DailyPoint, 0, len(buckets))
	for mdy, day := range buckets {
		key, ok := MDYSortKey(mdy)
		if !ok {
			continue
		}
		p := DailyPoint{Date: mdy, Key: key, Means: make(map[string]float64, len(day))}
		for site, a := range day {
			p.Means[site] = a.sum / float64(a.n)
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Table flattens daily means into a result table with a Date column followed
// by one column per site in the order given.
func Table(points []DailyPoint, sites []string) *database.Table {
	t := database.NewTable(append([]string{"Date"}, sites...)...)
	for _, p := range points {
		row := make([]any, 0, len(sites)+1)
		row = append(row, p.Date)
		for _, s := range sites {
			if v, ok := p.Means[s]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.AppendRow(row...)
	}
	return t
}
