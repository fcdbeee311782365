package statusbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/isws/wqrun/internal/tui/theme"
)

// Level selects how a status message is styled.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Model is the status bar component.
type Model struct {
	width      int
	connected  bool
	source     string
	activePane string
	message    string
	level      Level
}

// New creates a new status bar model.
func New() Model {
	return Model{activePane: "catalog"}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetSource sets the connection or snapshot description on the left.
func (m *Model) SetSource(connected bool, source string) {
	m.connected = connected
	m.source = source
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetMessage sets an informational message. An empty message restores the
// key hints.
func (m *Model) SetMessage(msg string) {
	m.message = msg
	m.level = LevelInfo
}

// SetWarning sets a warning message.
func (m *Model) SetWarning(msg string) {
	m.message = msg
	m.level = LevelWarning
}

// SetError sets an error message.
func (m *Model) SetError(msg string) {
	m.message = msg
	m.level = LevelError
}

// Message returns the current message and its level.
func (m Model) Message() (string, Level) {
	return m.message, m.level
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	dot := lipgloss.NewStyle().Foreground(theme.ColorSuccess).Render("●")
	if !m.connected {
		dot = lipgloss.NewStyle().Foreground(theme.ColorMuted).Render("○")
	}
	left := dot + " " + m.source + theme.StyleMuted.Render(" ["+m.activePane+"]")

	right := "Ctrl+E: Run │ Tab: Pane │ ?: Help │ q: Quit"
	if m.message != "" {
		switch m.level {
		case LevelWarning:
			right = lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(m.message)
		case LevelError:
			right = lipgloss.NewStyle().Foreground(theme.ColorError).Render(m.message)
		default:
			right = m.message
		}
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
