package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isws/wqrun/internal/database"
)

func sampleTable() *database.Table {
	t := &database.Table{Columns: []database.Column{
		{Name: "DateTime", DataType: "DATETIME"},
		{Name: "Station_ID", DataType: "INT"},
		{Name: "DTW_FT", DataType: "DECIMAL"},
		{Name: "Name", DataType: "NVARCHAR"},
		{Name: "Valid", DataType: "BIT"},
		{Name: "Empty"},
		{Name: "Mixed"},
		{Name: "Widened"},
	}}
	base := time.Date(2019, 5, 1, 8, 30, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		var mixed, widened any = "ND", int64(i)
		if i%2 == 0 {
			mixed = int64(i)
			widened = float64(i) + 0.5
		}
		var depth any = 12.5 + float64(i)
		if i == 3 {
			depth = nil
		}
		t.AppendRow(base.Add(time.Duration(i)*time.Hour), int64(403600+i), depth, "Mo Ave. Well 2", i%3 == 0, nil, mixed, widened)
	}
	return t
}

func TestRoundTrip(t *testing.T) {
	original := sampleTable()

	var buf bytes.Buffer
	saved, err := Save(&buf, original)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, 11, saved.Rows)
	assert.Equal(t, 8, saved.Columns)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(magic)))

	got, info, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, info.ID)
	assert.True(t, saved.Created.Equal(info.Created))

	assert.Equal(t, original.Columns, got.Columns)
	require.Equal(t, original.RowCount(), got.RowCount())

	for ri := range original.Rows {
		for _, ci := range []int{0, 1, 2, 3, 4, 5} {
			if diff := cmp.Diff(original.Rows[ri][ci], got.Rows[ri][ci]); diff != "" {
				t.Errorf("row %d column %d (-want +got):\n%s", ri, ci, diff)
			}
		}
	}

	assert.Nil(t, got.Value(3, 2))
	assert.Equal(t, "0", got.Value(0, 6))
	assert.Equal(t, "ND", got.Value(1, 6))
	assert.Equal(t, 0.5, got.Value(0, 7))
	assert.Equal(t, 1.0, got.Value(1, 7))
}

func TestRoundTrip_Empty(t *testing.T) {
	original := database.NewTable("DateTime", "Station_ID")

	var buf bytes.Buffer
	_, err := Save(&buf, original)
	require.NoError(t, err)

	got, info, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Rows)
	assert.Equal(t, []string{"DateTime", "Station_ID"}, got.ColumnNames())
	assert.Zero(t, got.RowCount())
}

func TestLoad_NotSnapshot(t *testing.T) {
	_, _, err := Load(bytes.NewReader([]byte("DateTime,Station_ID\n")))
	assert.ErrorIs(t, err, ErrNotSnapshot)

	_, _, err = Load(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNotSnapshot)

	_, _, err = Load(bytes.NewReader([]byte(magic + "garbage")))
	assert.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "estl.wqsnap")
	original := sampleTable()

	saved, err := SaveFile(path, original)
	require.NoError(t, err)

	got, info, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, info.ID)
	assert.Equal(t, original.ColumnNames(), got.ColumnNames())
	assert.Equal(t, original.RowCount(), got.RowCount())

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.wqsnap"))
	assert.Error(t, err)
}

func TestColumnKind(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, KindTime, columnKind(table, 0))
	assert.Equal(t, KindInt, columnKind(table, 1))
	assert.Equal(t, KindFloat, columnKind(table, 2))
	assert.Equal(t, KindString, columnKind(table, 3))
	assert.Equal(t, KindBool, columnKind(table, 4))
	assert.Equal(t, KindNull, columnKind(table, 5))
	assert.Equal(t, KindString, columnKind(table, 6))
	assert.Equal(t, KindFloat, columnKind(table, 7))
	assert.Equal(t, "time", KindTime.String())
}
