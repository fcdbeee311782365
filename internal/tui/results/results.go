package results

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/export"
	"github.com/isws/wqrun/internal/tui/theme"
)

const (
	maxColWidth = 40
	nullText    = "NULL"
)

// Model is the query results component.
type Model struct {
	result    *database.Table
	cells     [][]string
	err       error
	width     int
	height    int
	focused   bool
	loading   bool
	colWidths []int

	cursorX int
	cursorY int
	offsetX int
	scrollY int

	lastQuery     string
	statusMessage string
	exportDir     string
}

// New creates a results model that writes exports into dir.
func New(dir string) Model {
	return Model{exportDir: dir}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetResult shows t as the result of query.
func (m *Model) SetResult(t *database.Table, query string) {
	m.result = t
	m.lastQuery = query
	m.err = nil
	m.loading = false
	m.cursorX, m.cursorY = 0, 0
	m.offsetX, m.scrollY = 0, 0
	m.formatCells()
}

// SetError sets an error to display. The previous result stays available
// once the error is dismissed by the next query.
func (m *Model) SetError(err error) {
	m.err = err
	m.loading = false
}

// Result returns the table on display.
func (m Model) Result() *database.Table {
	return m.result
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.cursorY, m.cursorX
}

// TakeStatus returns and clears the pending status message.
func (m *Model) TakeStatus() string {
	s := m.statusMessage
	m.statusMessage = ""
	return s
}

func (m *Model) formatCells() {
	m.cells = nil
	m.colWidths = nil
	if m.result == nil {
		return
	}

	m.colWidths = make([]int, len(m.result.Columns))
	for i, col := range m.result.Columns {
		m.colWidths[i] = lipgloss.Width(col.Name)
	}

	m.cells = make([][]string, len(m.result.Rows))
	for r, row := range m.result.Rows {
		m.cells[r] = make([]string, len(m.result.Columns))
		for c := range m.result.Columns {
			var v any
			if c < len(row) {
				v = row[c]
			}
			s := nullText
			if v != nil {
				s = strings.ReplaceAll(export.FormatCell(v), "\n", " ")
			}
			m.cells[r][c] = s
			if w := lipgloss.Width(s); w > m.colWidths[c] {
				m.colWidths[c] = w
			}
		}
	}

	for i := range m.colWidths {
		m.colWidths[i] = min(max(m.colWidths[i], 1), maxColWidth)
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused || m.result == nil {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := m.result.RowCount()
	cols := len(m.result.Columns)
	page := max(m.visibleRows(), 1)

	switch key.String() {
	case "up", "k":
		m.cursorY = max(m.cursorY-1, 0)
	case "down", "j":
		m.cursorY = min(m.cursorY+1, max(rows-1, 0))
	case "left", "h":
		m.cursorX = max(m.cursorX-1, 0)
	case "right", "l":
		m.cursorX = min(m.cursorX+1, max(cols-1, 0))
	case "pgup":
		m.cursorY = max(m.cursorY-page, 0)
	case "pgdown":
		m.cursorY = min(m.cursorY+page, max(rows-1, 0))
	case "home", "g":
		m.cursorY = 0
	case "end", "G":
		m.cursorY = max(rows-1, 0)
	case "y":
		m.doCopyCell()
	case "Y":
		m.doCopyRowJSON()
	case "c":
		m.doCopyRowCSV()
	case "f":
		return m, m.doFilterByValue()
	case "e":
		return m, m.exportCmd(export.FormatCSV)
	case "E":
		return m, m.exportCmd(export.FormatJSON)
	case "p":
		return m, m.plotCmd(false)
	case "P":
		return m, m.plotCmd(true)
	}

	m.scroll(page)
	return m, nil
}

func (m *Model) scroll(page int) {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+page {
		m.scrollY = m.cursorY - page + 1
	}
	if m.cursorX < m.offsetX {
		m.offsetX = m.cursorX
	}
	for m.offsetX < m.cursorX && m.spanWidth(m.offsetX, m.cursorX) > m.width-4 {
		m.offsetX++
	}
}

// spanWidth is the rendered width of columns from..to inclusive.
func (m Model) spanWidth(from, to int) int {
	w := 0
	for i := from; i <= to && i < len(m.colWidths); i++ {
		w += m.colWidths[i] + 3
	}
	return w
}

func (m Model) visibleRows() int {
	return m.height - 4
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Executing query...")
	}

	if m.err != nil {
		style := theme.StyleError
		label := "  Error: "
		if isWarning(m.err) {
			style = theme.StyleWarning
			label = "  Warning: "
		}
		return title + "\n" + style.Render(label+m.err.Error())
	}

	if m.result == nil {
		return title + "\n" + theme.StyleMuted.Render("  Execute a query to see results")
	}

	stats := fmt.Sprintf("%s row(s) | %s",
		humanize.Comma(int64(m.result.RowCount())),
		m.result.Duration.Round(1000).String(),
	)
	header := title + "  " + theme.StyleMuted.Render(stats)

	if len(m.result.Columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query returned no columns")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(-1, m.result.ColumnNames()))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	visible := max(m.visibleRows(), 1)
	for i := m.scrollY; i < len(m.cells) && i < m.scrollY+visible; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(i, m.cells[i]))
	}

	return b.String()
}

func (m Model) visibleCols() (from, to int) {
	from = m.offsetX
	to = from
	for to < len(m.colWidths)-1 && m.spanWidth(from, to+1) <= m.width-4 {
		to++
	}
	return from, to
}

// renderRow renders row r; r < 0 is the header.
func (m Model) renderRow(r int, cells []string) string {
	from, to := m.visibleCols()
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to && i < len(cells); i++ {
		display := fit(cells[i], m.colWidths[i])

		switch {
		case r < 0:
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && r == m.cursorY && i == m.cursorX:
			display = theme.StyleSelectedCell.Render(display)
		case cells[i] == nullText && m.result.Value(r, i) == nil:
			display = theme.StyleMuted.Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func (m Model) renderSeparator() string {
	from, to := m.visibleCols()
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to && i < len(m.colWidths); i++ {
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
