package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Command", "Runs", "Failed"}
	rows := [][]string{
		{"git", "120", "3"},
		{"kubectl", "7", "0"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Command  Runs  Failed" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "git       120       3" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "kubectl     7       0" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Command", "Runs"}, [][]string{{"日本", "1"}}, nil)
	if lines[1] != "日本     1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncate("averyverylongcommand", 8); displayWidth(got) > 8 {
		t.Fatalf("truncate exceeded width: %q", got)
	}
}
