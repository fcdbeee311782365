package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isws/wqrun/internal/database"
)

func TestCoerceNumber(t *testing.T) {
	testCases := []struct {
		in     any
		expect float64
		ok     bool
	}{
		{in: 12.5, expect: 12.5, ok: true},
		{in: int64(7), expect: 7, ok: true},
		{in: "1,234.5", expect: 1234.5, ok: true},
		{in: " 40 ", expect: 40, ok: true},
		{in: "", ok: false},
		{in: nil, ok: false},
		{in: "ND", ok: false},
		{in: math.Inf(1), ok: false},
		{in: time.Now(), ok: false},
	}

	for _, tc := range testCases {
		got, ok := CoerceNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.expect, got)
		}
	}
}

func TestToMDY(t *testing.T) {
	testCases := []struct {
		in     any
		expect string
		ok     bool
	}{
		{in: "10/1/2020 12:00:00 AM", expect: "10/01/2020", ok: true},
		{in: "3/14/2019", expect: "03/14/2019", ok: true},
		{in: "2021-06-09 08:30:00", expect: "06/09/2021", ok: true},
		{in: time.Date(2022, 1, 5, 9, 0, 0, 0, time.UTC), expect: "01/05/2022", ok: true},
		{in: "", ok: false},
		{in: "10/2020", ok: false},
		{in: 42, ok: false},
	}

	for _, tc := range testCases {
		got, ok := ToMDY(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.expect, got)
	}
}

func TestMDYSortKey(t *testing.T) {
	key, ok := MDYSortKey("10/01/2020")
	require.True(t, ok)
	assert.Equal(t, 20201001, key)

	_, ok = MDYSortKey("10/01")
	assert.False(t, ok)

	_, ok = MDYSortKey("aa/bb/cccc")
	assert.False(t, ok)
}

func TestQuantileSorted(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.75, QuantileSorted(values, 0.25))
	assert.Equal(t, 2.5, QuantileSorted(values, 0.5))
	assert.Equal(t, 3.25, QuantileSorted(values, 0.75))
	assert.Equal(t, 1.0, QuantileSorted(values, 0))
	assert.Equal(t, 4.0, QuantileSorted(values, 1))
	assert.Equal(t, 9.0, QuantileSorted([]float64{9}, 0.3))
	assert.True(t, math.IsNaN(QuantileSorted(nil, 0.5)))
}

func sampleTable() *database.Table {
	t := database.NewTable("ParamName", "Name", "Start_Date", "Result_Value")
	t.AppendRow("Chlorobenzene (mg/L)", "Mo Ave. Well 2", "10/1/2020 12:00:00 AM", "40")
	t.AppendRow("Chlorobenzene  (mg/L) ", "Mo Ave. Well 2", "10/1/2020 3:00:00 PM", "20")
	t.AppendRow("Chlorobenzene (mg/L)", "Mo Ave. Well 2", "9/15/2020 12:00:00 AM", 10.0)
	t.AppendRow("Chlorobenzene (mg/L)", "Mo Ave. Well 3", "10/1/2020 12:00:00 AM", "1,000")
	t.AppendRow("Chlorobenzene (mg/L)", "Mo Ave. Well 3", "bad date", "5")
	t.AppendRow("Chlorobenzene (mg/L)", "Mo Ave. Well 4", "10/1/2020 12:00:00 AM", "ND")
	t.AppendRow("Benzene (mg/L)", "Mo Ave. Well 2", "10/1/2020 12:00:00 AM", "99")
	return t
}

func TestBoxStats(t *testing.T) {
	boxes, err := BoxStats(sampleTable(), BoxOptions{Param: "Chlorobenzene (mg/L)", MinCount: 2})
	require.NoError(t, err)
	require.Len(t, boxes, 2)

	assert.Equal(t, Box{
		Site:   "Mo Ave. Well 2",
		Count:  3,
		Min:    10,
		Q1:     15,
		Median: 20,
		Mean:   70.0 / 3,
		Q3:     30,
		Max:    40,
	}, boxes[0])

	assert.Equal(t, "Mo Ave. Well 3", boxes[1].Site)
	assert.Equal(t, 2, boxes[1].Count)
	assert.Equal(t, 1000.0, boxes[1].Max)
}

func TestBoxStats_DefaultMinCount(t *testing.T) {
	boxes, err := BoxStats(sampleTable(), BoxOptions{Param: "Chlorobenzene (mg/L)"})
	require.NoError(t, err)
	assert.Empty(t, boxes)

	boxes, err = BoxStats(sampleTable(), BoxOptions{Param: "Benzene (mg/L)", MinCount: -1})
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, 99.0, boxes[0].Median)
}

func TestBoxStats_MissingColumn(t *testing.T) {
	_, err := BoxStats(database.NewTable("Name"), BoxOptions{Param: "x"})
	assert.ErrorContains(t, err, "ParamName")
}

func TestDailyMeans(t *testing.T) {
	sites := []string{"Mo Ave. Well 2", "Mo Ave. Well 3", "Mo Ave. Well 4"}

	points, err := DailyMeans(sampleTable(), TrendOptions{Param: "Chlorobenzene (mg/L)", Sites: sites})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "09/15/2020", points[0].Date)
	assert.Equal(t, map[string]float64{"Mo Ave. Well 2": 10}, points[0].Means)

	assert.Equal(t, "10/01/2020", points[1].Date)
	assert.Equal(t, 20201001, points[1].Key)
	// The second row's parameter has extra whitespace and is not an exact match.
	assert.Equal(t, map[string]float64{"Mo Ave. Well 2": 40, "Mo Ave. Well 3": 1000}, points[1].Means)

	table := Table(points, sites)
	assert.Equal(t, []string{"Date", "Mo Ave. Well 2", "Mo Ave. Well 3", "Mo Ave. Well 4"}, table.ColumnNames())
	require.Equal(t, 2, table.RowCount())
	assert.Nil(t, table.Value(0, 2))
	assert.Equal(t, 1000.0, table.Value(1, 2))
}
