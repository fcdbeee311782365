package results

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/export"
)

func sampleTable() *database.Table {
	t := database.NewTable("Station_ID", "DateTime", "DTW_ft")
	t.AppendRow(int64(403609), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 12.5)
	t.AppendRow(int64(403610), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), nil)
	return t
}

func newModel(t *testing.T) Model {
	m := New(t.TempDir())
	m.SetSize(120, 20)
	m.SetFocused(true)
	m.SetResult(sampleTable(), "SELECT * FROM dbo.DTW_Data")
	return m
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return m.Update(msg)
}

func TestView(t *testing.T) {
	m := newModel(t)
	view := m.View()

	assert.Contains(t, view, "2 row(s)")
	assert.Contains(t, view, "Station_ID")
	assert.Contains(t, view, "403609")
	assert.Contains(t, view, "2024-01-02 00:00:00")
	assert.Contains(t, view, "NULL")
}

func TestView_Empty(t *testing.T) {
	m := New(t.TempDir())
	assert.Contains(t, m.View(), "Execute a query")
}

func TestView_Warning(t *testing.T) {
	m := newModel(t)
	m.SetError(&app.ErrRejectedQuery{Query: "DELETE FROM x"})
	assert.Contains(t, m.View(), "Warning:")

	m.SetError(errors.New("boom"))
	assert.Contains(t, m.View(), "Error: boom")
	assert.NotNil(t, m.Result())
}

func TestCursor_Clamped(t *testing.T) {
	m := newModel(t)
	for range 5 {
		m, _ = press(m, "down")
		m, _ = press(m, "right")
	}
	row, col := m.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)
}

func TestCopy(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	m := newModel(t)
	m, _ = press(m, "y")
	assert.Equal(t, "403609", copied)
	assert.Equal(t, "Copied 403609", m.TakeStatus())
	assert.Empty(t, m.TakeStatus())

	m, _ = press(m, "c")
	assert.Equal(t, "Station_ID,DateTime,DTW_ft\n403609,2024-01-02 00:00:00,12.5\n", copied)

	m, _ = press(m, "Y")
	assert.Contains(t, copied, `"Station_ID": 403609`)
}

func TestCopy_Null(t *testing.T) {
	m := newModel(t)
	m, _ = press(m, "down")
	m, _ = press(m, "right")
	m, _ = press(m, "right")
	m, _ = press(m, "y")
	assert.Equal(t, "Nothing to copy", m.TakeStatus())
}

func TestFilterByValue(t *testing.T) {
	m := newModel(t)
	_, cmd := press(m, "f")
	require.NotNil(t, cmd)

	msg := cmd().(SetEditorQueryMsg)
	assert.Equal(t, "-- @value = 403609\nSELECT * FROM dbo.DTW_Data WHERE Station_ID = @value", msg.Query)
}

func TestFilterByValue_Null(t *testing.T) {
	m := newModel(t)
	m, _ = press(m, "down")
	m, _ = press(m, "right")
	m, _ = press(m, "right")
	_, cmd := press(m, "f")
	require.NotNil(t, cmd)

	msg := cmd().(SetEditorQueryMsg)
	assert.Equal(t, "SELECT * FROM dbo.DTW_Data WHERE DTW_ft IS NULL", msg.Query)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)
	m.SetFocused(true)
	m.SetResult(sampleTable(), "SELECT * FROM dbo.DTW_Data")

	_, cmd := press(m, "e")
	require.NotNil(t, cmd)

	msg := cmd().(StatusNotifyMsg)
	assert.False(t, msg.Err)
	assert.Contains(t, msg.Message, "Exported 2 rows")

	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	back, err := export.ReadFile(matches[0], export.ReadOptions{InferTypes: true})
	require.NoError(t, err)
	assert.Equal(t, 2, back.RowCount())

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "Station_ID,DateTime,DTW_ft\n"))
}

func TestPlotRequest(t *testing.T) {
	m := newModel(t)
	m, _ = press(m, "right")
	m, _ = press(m, "right")
	_, cmd := press(m, "P")
	require.NotNil(t, cmd)

	assert.Equal(t, PlotRequestMsg{Field: "DTW_ft", MultiPanel: true}, cmd())
}

func TestExtractTableName(t *testing.T) {
	assert.Equal(t, "dbo.Sample", extractTableName("select top 10 * from dbo.Sample;"))
	assert.Equal(t, "", extractTableName("SELECT 1"))
}
