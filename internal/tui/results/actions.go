package results

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/export"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func isWarning(err error) bool {
	return app.IsSoft(err)
}

func (m Model) cellValue() (any, bool) {
	if m.result == nil || m.cursorY >= m.result.RowCount() || m.cursorX >= len(m.result.Columns) {
		return nil, false
	}
	return m.result.Value(m.cursorY, m.cursorX), true
}

func (m Model) columnName() string {
	if m.result == nil || m.cursorX >= len(m.result.Columns) {
		return ""
	}
	return m.result.Columns[m.cursorX].Name
}

// currentRow returns the selected row as a one-row table.
func (m Model) currentRow() (*database.Table, bool) {
	if m.result == nil || m.cursorY >= m.result.RowCount() {
		return nil, false
	}
	t := &database.Table{Columns: m.result.Columns}
	t.Rows = [][]any{m.result.Rows[m.cursorY]}
	return t, true
}

func (m *Model) copy(text, what string) {
	if err := writeClipboard(text); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.statusMessage = "Copied " + what
}

func (m *Model) doCopyCell() {
	v, ok := m.cellValue()
	if !ok || v == nil {
		m.statusMessage = "Nothing to copy"
		return
	}
	s := export.FormatCell(v)
	m.copy(s, truncateStatus(s, 40))
}

func (m *Model) doCopyRowJSON() {
	row, ok := m.currentRow()
	if !ok {
		m.statusMessage = "No row to copy"
		return
	}
	var b strings.Builder
	if err := export.WriteJSON(&b, row); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.copy(b.String(), "row as JSON")
}

func (m *Model) doCopyRowCSV() {
	row, ok := m.currentRow()
	if !ok {
		m.statusMessage = "No row to copy"
		return
	}
	var b strings.Builder
	if err := export.WriteCSV(&b, row); err != nil {
		m.statusMessage = "Copy failed: " + err.Error()
		return
	}
	m.copy(b.String(), "row as CSV")
}

// doFilterByValue proposes a query narrowing the last result to rows whose
// selected column equals the selected cell. The value is bound as a
// parameter line, never spliced into the SQL.
func (m *Model) doFilterByValue() tea.Cmd {
	col := m.columnName()
	v, ok := m.cellValue()
	table := extractTableName(m.lastQuery)
	if col == "" || !ok || table == "" {
		m.statusMessage = "Cannot filter: no table in last query"
		return nil
	}

	var query string
	if v == nil {
		query = fmt.Sprintf("SELECT * FROM %s WHERE %s IS NULL", table, col)
	} else {
		query = fmt.Sprintf("-- @value = %s\nSELECT * FROM %s WHERE %s = @value", paramLiteral(v), table, col)
	}

	return func() tea.Msg {
		return SetEditorQueryMsg{Query: query}
	}
}

// paramLiteral renders v so database.ParseValue reads back the same type.
func paramLiteral(v any) string {
	switch v.(type) {
	case int64, float64, bool:
		return export.FormatCell(v)
	default:
		return "'" + export.FormatCell(v) + "'"
	}
}

func (m Model) exportCmd(format export.Format) tea.Cmd {
	result := m.result
	if result == nil {
		return nil
	}
	title := extractTableName(m.lastQuery)
	if title == "" {
		title = "results"
	}
	path := filepath.Join(m.exportDir, export.FileName(title, format, time.Now()))

	return func() tea.Msg {
		if err := export.WriteFile(path, result); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error(), Err: true}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %s rows to %s",
			humanize.Comma(int64(result.RowCount())), path)}
	}
}

func (m *Model) plotCmd(multiPanel bool) tea.Cmd {
	field := m.columnName()
	if field == "" {
		m.statusMessage = "No column selected"
		return nil
	}
	return func() tea.Msg {
		return PlotRequestMsg{Field: field, MultiPanel: multiPanel}
	}
}

// extractTableName returns the identifier after the first FROM.
func extractTableName(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		if strings.EqualFold(tok, "FROM") && i+1 < len(tokens) {
			if name := strings.TrimRight(tokens[i+1], ";,()"); name != "" {
				return name
			}
		}
	}
	return ""
}

func truncateStatus(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
