// Package picker provides the Bubble Tea command picker.
package picker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const defaultMaxVisible = 12

// RefreshFunc returns the current candidates and whether they changed since
// the last call.
type RefreshFunc func() ([]string, bool, error)

// Options configures the picker.
type Options struct {
	Prompt          string
	MaxVisible      int
	RefreshInterval time.Duration
	Refresh         RefreshFunc
}

type refreshMsg struct{}

// Model implements the Bubble Tea picker UI.
type Model struct {
	opts       Options
	input      textinput.Model
	candidates []string
	matches    []match
	query      string

	cursor int
	offset int

	width  int
	height int

	selected  string
	cancelled bool
	errMsg    string
}

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a picker over ranked candidates.
func NewModel(candidates []string, opts Options) *Model {
	if opts.MaxVisible <= 0 {
		opts.MaxVisible = defaultMaxVisible
	}
	if opts.Prompt == "" {
		opts.Prompt = "run> "
	}
	input := textinput.New()
	input.Prompt = opts.Prompt
	input.PromptStyle = promptStyle
	input.Placeholder = "type to filter"
	input.Focus()

	m := &Model{
		opts:       opts,
		input:      input,
		candidates: candidates,
	}
	m.refilter()
	return m
}

// Selected returns the chosen command, or false when the picker was cancelled.
func (m *Model) Selected() (string, bool) {
	if m.cancelled || m.selected == "" {
		return "", false
	}
	return m.selected, true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scheduleRefresh())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-runewidth.StringWidth(m.opts.Prompt)-1, 1)
		m.clampCursor()
		return m, nil
	case refreshMsg:
		m.handleRefresh()
		return m, m.scheduleRefresh()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.matches) == 0 {
				return m, nil
			}
			m.selected = m.matches[m.cursor].id
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP, tea.KeyShiftTab:
			m.moveCursor(-1)
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			m.moveCursor(1)
			return m, nil
		case tea.KeyPgUp:
			m.moveCursor(-m.visibleRows())
			return m, nil
		case tea.KeyPgDown:
			m.moveCursor(m.visibleRows())
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != m.query {
		m.query = value
		m.refilter()
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	rows := m.visibleRows()
	end := min(m.offset+rows, len(m.matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderItem(m.matches[i], i == m.cursor))
		b.WriteByte('\n')
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderItem(item match, current bool) string {
	marker := "  "
	style := itemStyle
	if current {
		marker = "> "
		style = selectedStyle
	}
	limit := 0
	if m.width > 0 {
		limit = m.width - runewidth.StringWidth(marker)
	}
	return style.Render(marker) + highlight(item, style, limit)
}

// highlight styles matched runes and truncates to limit display cells.
func highlight(item match, base lipgloss.Style, limit int) string {
	hit := make(map[int]bool, len(item.positions))
	for _, p := range item.positions {
		hit[p] = true
	}
	truncating := limit > 0 && runewidth.StringWidth(item.id) > limit
	var b strings.Builder
	width := 0
	for i, r := range []rune(item.id) {
		w := runewidth.RuneWidth(r)
		if truncating && width+w > limit-1 {
			b.WriteString(base.Render("…"))
			break
		}
		width += w
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	return footerStyle.Render(fmt.Sprintf("%d/%d  enter run · esc cancel", len(m.matches), len(m.candidates)))
}

func (m *Model) visibleRows() int {
	rows := m.opts.MaxVisible
	if m.height > 0 {
		// Prompt and footer take one line each.
		rows = min(rows, m.height-2)
	}
	return max(rows, 1)
}

func (m *Model) moveCursor(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) refilter() {
	m.matches = filter(m.candidates, m.query)
	m.cursor = 0
	m.offset = 0
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.opts.Refresh == nil || m.opts.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.RefreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *Model) handleRefresh() {
	candidates, changed, err := m.opts.Refresh()
	if err != nil {
		m.errMsg = fmt.Sprintf("refresh failed: %v", err)
		return
	}
	m.errMsg = ""
	if !changed {
		return
	}
	current := ""
	if len(m.matches) > 0 {
		current = m.matches[m.cursor].id
	}
	m.candidates = candidates
	m.matches = filter(m.candidates, m.query)
	m.cursor = 0
	for i, item := range m.matches {
		if item.id == current {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}
