package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/isws/wqrun/internal/database"
	"github.com/isws/wqrun/internal/tui/theme"
)

// ExecuteQueryMsg is sent when the user triggers query execution.
type ExecuteQueryMsg struct {
	Query  string
	Params database.Params
}

// Keywords uppercased by the formatter. Only read-side SQL is listed.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"join": true, "inner": true, "outer": true, "left": true, "right": true,
	"cross": true, "on": true, "not": true, "in": true, "is": true,
	"null": true, "like": true, "order": true, "by": true, "group": true,
	"having": true, "limit": true, "offset": true, "top": true, "as": true,
	"distinct": true, "count": true, "sum": true, "avg": true, "min": true,
	"max": true, "between": true, "exists": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "union": true, "all": true,
	"asc": true, "desc": true, "cast": true, "convert": true,
	"true": true, "false": true,
}

// Model is the SQL query editor component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	words       []string // table and column names offered on Tab
	completing  bool
	completions []string
	compIndex   int
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT ... (-- @name = value lines bind parameters)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(w - 2)
	m.textarea.SetHeight(h - 2)
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns whether the editor has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the current editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
	m.cancelCompletion()
}

// Completing reports whether Tab is cycling completion candidates.
func (m Model) Completing() bool {
	return m.completing
}

// SetCompletions sets the names offered by Tab completion.
func (m *Model) SetCompletions(names []string) {
	m.words = names
}

// Clear empties the editor.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		switch key {
		case "ctrl+e", "f5":
			query, params := SplitParams(m.textarea.Value())
			if query == "" {
				return m, nil
			}
			m.cancelCompletion()
			return m, func() tea.Msg {
				return ExecuteQueryMsg{Query: query, Params: params}
			}

		case "ctrl+k":
			m.Clear()
			return m, nil

		case "ctrl+l":
			m.textarea.SetValue(FormatKeywords(m.textarea.Value()))
			return m, nil

		case "tab":
			if m.tryCompletion() {
				return m, nil
			}

		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		}

		if m.completing && key != "tab" {
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// SplitParams separates parameter lines of the form "-- @name = value" from
// the query text. Other lines are kept as written; the query is trimmed.
func SplitParams(text string) (string, database.Params) {
	var (
		lines  []string
		params database.Params
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(trimmed, "--")
		rest = strings.TrimSpace(rest)
		if ok && strings.HasPrefix(rest, "@") && strings.Contains(rest, "=") {
			p, err := database.ParseParams([]string{rest})
			if err == nil {
				if params == nil {
					params = database.Params{}
				}
				for k, v := range p {
					params[k] = v
				}
				continue
			}
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), params
}

// FormatKeywords uppercases SQL keywords outside string literals.
func FormatKeywords(val string) string {
	if val == "" {
		return val
	}

	var (
		result   strings.Builder
		word     strings.Builder
		inString bool
		quote    rune
	)

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if sqlKeywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		result.WriteString(w)
		word.Reset()
	}

	for _, ch := range val {
		switch {
		case inString:
			result.WriteRune(ch)
			if ch == quote {
				inString = false
			}
		case ch == '\'' || ch == '"' || ch == '[':
			flush()
			inString = true
			quote = ch
			if ch == '[' {
				quote = ']'
			}
			result.WriteRune(ch)
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '@':
			word.WriteRune(ch)
		default:
			flush()
			result.WriteRune(ch)
		}
	}
	flush()

	return result.String()
}

func (m *Model) tryCompletion() bool {
	if len(m.words) == 0 {
		return false
	}

	if m.completing && len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion()
		return true
	}

	partial := lastWord(m.textarea.Value())
	if partial == "" {
		return false
	}

	matches := Complete(m.words, partial)
	if len(matches) == 0 {
		return false
	}

	m.completing = true
	m.completions = matches
	m.compIndex = 0
	m.applyCompletion()
	return true
}

// Complete returns the names starting with partial, ignoring case.
func Complete(names []string, partial string) []string {
	lower := strings.ToLower(partial)
	var matches []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, name)
		}
	}
	return matches
}

func (m *Model) applyCompletion() {
	val := m.textarea.Value()
	base := strings.TrimSuffix(val, lastWord(val))
	m.textarea.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

func lastWord(s string) string {
	i := len(s) - 1
	for i >= 0 && isIdentChar(rune(s[i])) {
		i--
	}
	return s[i+1:]
}

func isIdentChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '.'
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Query")

	var hint string
	if m.completing && len(m.completions) > 1 {
		parts := make([]string, 0, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				parts = append(parts, theme.StyleSelected.Render(c))
			} else {
				parts = append(parts, theme.StyleMuted.Render(c))
			}
		}
		hint = "\n" + lipgloss.NewStyle().Padding(0, 1).Render(
			theme.StyleMuted.Render("Tab: ")+strings.Join(parts, " │ "),
		)
	}

	return title + "\n" + m.textarea.View() + hint
}
