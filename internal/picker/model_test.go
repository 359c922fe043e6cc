package picker

import (
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func ids(matches []match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.id
	}
	return out
}

func typeQuery(m *Model, query string) {
	for _, r := range query {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestFilterKeepsRankOrder(t *testing.T) {
	got := filter([]string{"git-log", "grep", "gofmt", "ls"}, "gl")
	if !slices.Equal(ids(got), []string{"git-log"}) {
		t.Fatalf("unexpected matches: %v", ids(got))
	}
	got = filter([]string{"make", "cmake", "ls"}, "mk")
	if !slices.Equal(ids(got), []string{"make", "cmake"}) {
		t.Fatalf("unexpected matches: %v", ids(got))
	}
	if !slices.Equal(got[1].positions, []int{1, 3}) {
		t.Fatalf("unexpected positions: %v", got[1].positions)
	}
}

func TestFilterSmartCase(t *testing.T) {
	candidates := []string{"Xorg", "xterm"}
	if got := ids(filter(candidates, "x")); !slices.Equal(got, candidates) {
		t.Fatalf("lower-case query should fold case: %v", got)
	}
	if got := ids(filter(candidates, "X")); !slices.Equal(got, []string{"Xorg"}) {
		t.Fatalf("upper-case query should be exact: %v", got)
	}
}

func TestTypingFiltersAndEnterSelects(t *testing.T) {
	m := NewModel([]string{"git", "grep", "go", "ls"}, Options{})
	typeQuery(m, "g")
	if !slices.Equal(ids(m.matches), []string{"git", "grep", "go"}) {
		t.Fatalf("unexpected matches: %v", ids(m.matches))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	got, ok := m.Selected()
	if !ok || got != "grep" {
		t.Fatalf("expected grep, got %q (%v)", got, ok)
	}
}

func TestEnterWithoutMatchesDoesNothing(t *testing.T) {
	m := NewModel([]string{"ls"}, Options{})
	typeQuery(m, "zz")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("expected no command")
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("nothing should be selected")
	}
}

func TestEscapeCancels(t *testing.T) {
	m := NewModel([]string{"ls"}, Options{})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.Selected(); ok {
		t.Fatalf("cancelled picker must not select")
	}
}

func TestViewScrollsWithCursor(t *testing.T) {
	m := NewModel([]string{"a1", "a2", "a3", "a4", "a5"}, Options{MaxVisible: 2})
	for i := 0; i < 3; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	view := m.View()
	if !strings.Contains(view, "a4") || strings.Contains(view, "a1") {
		t.Fatalf("unexpected window:\n%s", view)
	}
	if !strings.Contains(view, "5/5") {
		t.Fatalf("expected counter in footer:\n%s", view)
	}
}

func TestRefreshKeepsCurrentSelection(t *testing.T) {
	next := []string{"new", "b", "a"}
	m := NewModel([]string{"a", "b"}, Options{
		Refresh: func() ([]string, bool, error) {
			return next, true, nil
		},
	})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(refreshMsg{})
	if !slices.Equal(ids(m.matches), next) {
		t.Fatalf("unexpected candidates after refresh: %v", ids(m.matches))
	}
	if m.matches[m.cursor].id != "b" {
		t.Fatalf("expected cursor to stay on b, got %s", m.matches[m.cursor].id)
	}
}

func TestRefreshErrorShownInFooter(t *testing.T) {
	m := NewModel([]string{"a"}, Options{
		Refresh: func() ([]string, bool, error) {
			return nil, false, errors.New("boom")
		},
	})
	m.Update(refreshMsg{})
	if !strings.Contains(m.View(), "refresh failed: boom") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
	if len(m.candidates) != 1 {
		t.Fatalf("candidates should be kept on error")
	}
}

func TestHighlightTruncates(t *testing.T) {
	out := highlight(match{id: "averylongcommandname"}, lipgloss.NewStyle(), 8)
	if lipgloss.Width(out) > 8 || !strings.Contains(out, "…") {
		t.Fatalf("unexpected truncation: %q", out)
	}
	if got := highlight(match{id: "short"}, lipgloss.NewStyle(), 8); lipgloss.Width(got) != 5 || strings.Contains(got, "…") {
		t.Fatalf("short ids should not be truncated: %q", got)
	}
}
