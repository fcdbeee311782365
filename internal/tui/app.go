// Package tui is the interactive query console.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/tui/catalog"
	"github.com/isws/wqrun/internal/tui/editor"
	"github.com/isws/wqrun/internal/tui/results"
	"github.com/isws/wqrun/internal/tui/statusbar"
	"github.com/isws/wqrun/internal/tui/theme"
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneCatalog Pane = iota
	PaneEditor
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneCatalog:
		return "catalog"
	case PaneEditor:
		return "editor"
	case PaneResults:
		return "results"
	default:
		return "unknown"
	}
}

// Options configure the console.
type Options struct {
	// QueryTimeout bounds each query; zero means no limit.
	QueryTimeout time.Duration
	// ExportDir receives CSV and JSON exports.
	ExportDir string
}

type (
	queryExecutedMsg struct {
		query  string
		result *database.Table
		err    error
	}
	plottedMsg struct {
		field string
		err   error
	}
)

// Model is the top-level bubbletea model orchestrating all components.
type Model struct {
	runner     *app.Runner
	opts       Options
	catalog    catalog.Model
	editor     editor.Model
	results    results.Model
	statusbar  statusbar.Model
	activePane Pane
	width      int
	height     int
	showHelp   bool
}

// NewModel creates the console over r. A result already held by r is shown
// in the results pane.
func NewModel(r *app.Runner, opts Options) Model {
	m := Model{
		runner:    r,
		opts:      opts,
		catalog:   catalog.New(r.KnownTables()),
		editor:    editor.New(),
		results:   results.New(opts.ExportDir),
		statusbar: statusbar.New(),
	}
	m.statusbar.SetSource(r.Connected(), r.Source())
	m.editor.SetCompletions(r.KnownTables())
	if t := r.Result(); t != nil {
		m.showResult(t, "")
	}
	m.setFocus(PaneCatalog)
	return m
}

// Run starts the console on the alternate screen and blocks until the user
// quits.
func Run(r *app.Runner, opts Options) error {
	_, err := tea.NewProgram(NewModel(r, opts), tea.WithAltScreen()).Run()
	return err
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.editor.Init()
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if m.capturingText() {
			return m.updateComponents(msg)
		}

		switch msg.String() {
		case "?":
			m.showHelp = true
			return m, nil
		case "q":
			return m, tea.Quit
		case "tab":
			if m.activePane != PaneEditor {
				m.setFocus((m.activePane + 1) % 3)
				return m, nil
			}
		case "shift+tab":
			m.setFocus((m.activePane + 2) % 3)
			return m, nil
		}

	case catalog.PreviewMsg:
		query := m.runner.PreviewQuery(msg.Table)
		m.editor.SetQuery(query)
		return m, m.execute(query, nil)

	case catalog.InsertMsg:
		m.editor.SetQuery("SELECT * FROM " + msg.Table)
		m.setFocus(PaneEditor)
		return m, nil

	case editor.ExecuteQueryMsg:
		return m, m.execute(msg.Query, msg.Params)

	case results.SetEditorQueryMsg:
		m.editor.SetQuery(msg.Query)
		m.setFocus(PaneEditor)
		return m, nil

	case results.StatusNotifyMsg:
		if msg.Err {
			m.statusbar.SetError(msg.Message)
		} else {
			m.statusbar.SetMessage(msg.Message)
		}
		return m, nil

	case results.PlotRequestMsg:
		m.statusbar.SetMessage("Plotting " + msg.Field + "...")
		return m, m.plotCmd(msg.Field, msg.MultiPanel)

	case queryExecutedMsg:
		m.handleQueryResult(msg)
		return m, nil

	case plottedMsg:
		switch {
		case msg.err == nil:
			m.statusbar.SetMessage("Plotted " + msg.field)
		case app.IsSoft(msg.err):
			m.statusbar.SetWarning(msg.err.Error())
		default:
			m.statusbar.SetError("Plot failed: " + msg.err.Error())
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// capturingText reports whether keys belong to a text input rather than to
// the global bindings.
func (m Model) capturingText() bool {
	return m.activePane == PaneEditor || (m.activePane == PaneCatalog && m.catalog.Filtering())
}

func (m *Model) handleQueryResult(msg queryExecutedMsg) {
	m.results.SetLoading(false)
	switch {
	case msg.err == nil:
		m.showResult(msg.result, msg.query)
		m.statusbar.SetMessage(fmt.Sprintf("%s row(s) in %s",
			humanize.Comma(int64(msg.result.RowCount())), msg.result.Duration.Round(time.Millisecond)))
	case app.IsSoft(msg.err):
		m.results.SetError(msg.err)
		m.statusbar.SetWarning(msg.err.Error())
	case errors.Is(msg.err, context.DeadlineExceeded):
		m.results.SetError(msg.err)
		m.statusbar.SetError("Query timed out")
	default:
		m.results.SetError(msg.err)
		m.statusbar.SetError("Query failed")
	}
}

func (m *Model) showResult(t *database.Table, query string) {
	m.results.SetResult(t, query)
	m.editor.SetCompletions(append(m.runner.KnownTables(), t.ColumnNames()...))
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.activePane {
	case PaneCatalog:
		m.catalog, cmd = m.catalog.Update(msg)
	case PaneEditor:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" && !m.editor.Completing() {
			m.setFocus(PaneResults)
			return m, nil
		}
		m.editor, cmd = m.editor.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
		if s := m.results.TakeStatus(); s != "" {
			m.statusbar.SetMessage(s)
		}
	}

	return m, cmd
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.catalog.SetFocused(pane == PaneCatalog)
	m.editor.SetFocused(pane == PaneEditor)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

func (m Model) catalogWidth() int {
	return min(max(m.width/4, 22), 35)
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	availHeight := m.height - 1
	rightWidth := m.width - m.catalogWidth() - 1
	editorHeight := max(availHeight*35/100, 5)

	m.catalog.SetSize(m.catalogWidth(), availHeight)
	m.editor.SetSize(rightWidth, editorHeight)
	m.results.SetSize(rightWidth, availHeight-editorHeight-1)
	m.statusbar.SetWidth(m.width)
}

func (m *Model) execute(query string, params database.Params) tea.Cmd {
	m.results.SetLoading(true)
	m.statusbar.SetMessage("Executing query...")

	runner := m.runner
	timeout := m.opts.QueryTimeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		result, err := runner.Execute(ctx, query, params)
		return queryExecutedMsg{query: query, result: result, err: err}
	}
}

func (m Model) plotCmd(field string, multiPanel bool) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		return plottedMsg{field: field, err: runner.PlotTimeSeries(field, multiPanel)}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	border := func(p Pane) lipgloss.Style {
		if m.activePane == p {
			return theme.StyleActiveBorder
		}
		return theme.StyleBorder
	}

	catalogWidth := m.catalogWidth()
	rightWidth := m.width - catalogWidth - 1
	availHeight := m.height - 3
	editorHeight := max(availHeight*35/100, 5)
	resultsHeight := availHeight - editorHeight - 2

	catalogView := border(PaneCatalog).
		Width(catalogWidth - 2).
		Height(availHeight).
		Render(m.catalog.View())

	editorView := border(PaneEditor).
		Width(rightWidth - 2).
		Height(editorHeight).
		Render(m.editor.View())

	resultsView := border(PaneResults).
		Width(rightWidth - 2).
		Height(resultsHeight).
		Render(m.results.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		catalogView,
		lipgloss.JoinVertical(lipgloss.Left, editorView, resultsView),
	)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusbar.View())
}

func (m Model) viewHelp() string {
	section := lipgloss.NewStyle().Foreground(theme.ColorHighlight).Bold(true)
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(16)

	line := func(k, desc string) string {
		return key.Render("  "+k) + theme.StyleMuted.Render(desc)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleTitle.Render("wqrun console"),
		"",
		section.Render("Global"),
		line("q / Ctrl+C", "Quit"),
		line("Tab", "Next pane"),
		line("Shift+Tab", "Previous pane"),
		line("?", "Toggle this help"),
		"",
		section.Render("Tables"),
		line("↑/k  ↓/j", "Move"),
		line("/", "Filter table names"),
		line("s", "Preview first 100 rows"),
		line("Enter", "Start a SELECT in the editor"),
		"",
		section.Render("Query"),
		line("Ctrl+E / F5", "Run query (SELECT only)"),
		line("-- @name = v", "Bind parameter @name"),
		line("Ctrl+K", "Clear"),
		line("Ctrl+L", "Uppercase keywords"),
		line("Tab", "Complete table or column"),
		line("Esc", "Leave editor"),
		"",
		section.Render("Results"),
		line("←↑↓→ / hjkl", "Move cursor"),
		line("PgUp/PgDn", "Page"),
		line("y / Y / c", "Copy cell, row as JSON, row as CSV"),
		line("f", "Filter by selected value"),
		line("e / E", "Export CSV / JSON"),
		line("p / P", "Plot column per station, single / grid"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, help)
}
