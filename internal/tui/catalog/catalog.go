// Package catalog is the console pane listing the known tables.
package catalog

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/isws/wqrun/internal/tui/theme"
)

// PreviewMsg asks the app to run a preview query for Table.
type PreviewMsg struct {
	Table string
}

// InsertMsg asks the app to put a SELECT for Table into the editor.
type InsertMsg struct {
	Table string
}

// Model is the table catalog pane.
type Model struct {
	tables    []string
	visible   []string
	cursor    int
	width     int
	height    int
	focused   bool
	filtering bool
	filter    textinput.Model
}

// New creates a catalog pane over the given table names.
func New(tables []string) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 64

	m := Model{tables: tables, filter: ti}
	m.applyFilter()
	return m
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.filter.Width = w - 4
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if !f {
		m.stopFiltering()
	}
}

// Focused returns whether the pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Filtering reports whether the filter input is capturing keys.
func (m Model) Filtering() bool {
	return m.filtering
}

// Selected returns the table under the cursor.
func (m Model) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return "", false
	}
	return m.visible[m.cursor], true
}

// Visible returns the tables matching the current filter.
func (m Model) Visible() []string {
	return m.visible
}

func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	var visible []string
	for _, t := range m.tables {
		if q == "" || strings.Contains(strings.ToLower(t), q) {
			visible = append(visible, t)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

func (m *Model) stopFiltering() {
	m.filtering = false
	m.filter.Blur()
}

// Update handles messages for the catalog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "enter":
			m.stopFiltering()
			return m, nil
		case "esc":
			m.filter.SetValue("")
			m.stopFiltering()
			m.applyFilter()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.visible)-1)
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "s":
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return PreviewMsg{Table: t} }
		}
	case "enter":
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return InsertMsg{Table: t} }
		}
	}

	return m, nil
}

// View renders the catalog.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleTitle.Render("Tables"))
	b.WriteString(theme.StyleMuted.Render(" " + strconv.Itoa(len(m.visible)) + "/" + strconv.Itoa(len(m.tables))))
	b.WriteString("\n")

	visibleHeight := m.height - 2
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		visibleHeight--
	}
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	if len(m.visible) == 0 {
		b.WriteString(theme.StyleMuted.Render("  No matching tables"))
		return b.String()
	}

	offset := 0
	if m.cursor >= visibleHeight {
		offset = m.cursor - visibleHeight + 1
	}

	for i := offset; i < len(m.visible) && i < offset+visibleHeight; i++ {
		line := "  " + m.visible[i]
		if m.width > 4 && lipgloss.Width(line) > m.width-2 {
			line = line[:m.width-4] + ".."
		}
		if i == m.cursor {
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(line)
		if i < offset+visibleHeight-1 && i < len(m.visible)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
