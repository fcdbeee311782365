package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 7, 15, 8, 30, 0, 0, time.UTC)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int32", int32(7), int64(7)},
		{"uint16", uint16(7), int64(7)},
		{"float32", float32(0.5), 0.5},
		{"bytes", []byte("abc"), "abc"},
		{"uuid array", [16]byte(id), id.String()},
		{"time", ts, ts},
		{"time pointer", &ts, ts},
		{"bool", true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeTyped(t *testing.T) {
	assert.Equal(t, 12.5, NormalizeTyped([]byte("12.50"), "DECIMAL"))
	assert.Equal(t, int64(42), NormalizeTyped([]byte("42"), "int"))
	assert.Equal(t, true, NormalizeTyped("1", "BIT"))
	assert.Equal(t, "n/a", NormalizeTyped([]byte("n/a"), "NUMERIC"))
	assert.Equal(t, "text", NormalizeTyped("text", "VARCHAR"))
}

func TestTableHelpers(t *testing.T) {
	tbl := NewTable("Station_ID", "DTW_FT")
	tbl.AppendRow(int32(1), float32(2))
	tbl.AppendRow("2")

	assert.Equal(t, []string{"Station_ID", "DTW_FT"}, tbl.ColumnNames())
	assert.Equal(t, 1, tbl.ColumnIndex("DTW_FT"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.True(t, tbl.HasColumn("Station_ID"))
	assert.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, int64(1), tbl.Value(0, 0))
	assert.Nil(t, tbl.Value(1, 1))
	assert.Nil(t, tbl.Value(5, 0))

	clone := tbl.Clone()
	clone.Rows[0][0] = int64(99)
	assert.Equal(t, int64(1), tbl.Value(0, 0))
}

func TestPreviewQuery(t *testing.T) {
	assert.Equal(t, "SELECT TOP 100 * FROM dbo.TBL_Charts", DialectSQLServer.PreviewQuery("dbo.TBL_Charts", 100))
	assert.Equal(t, "SELECT * FROM results LIMIT 5", DialectPostgres.PreviewQuery("results", 5))
}
