package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/runrank/internal/model"
	"github.com/verte-zerg/runrank/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runrank.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	for i, cmd := range []string{"git", "make", "git", "git"} {
		inv := model.Invocation{
			Command:    cmd,
			InvokedAt:  start.AddDate(0, 0, i),
			DurationMs: 20,
		}
		if _, err := st.InsertInvocation(ctx, inv); err != nil {
			t.Fatalf("insert invocation: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Top: 5})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Commands) != 2 || report.Commands[0].Command != "git" || report.Commands[0].Count != 3 {
		t.Fatalf("unexpected commands: %+v", report.Commands)
	}
	if len(report.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(report.Days))
	}
	if len(report.Recent) != 4 || !report.Recent[0].InvokedAt.Equal(start.AddDate(0, 0, 3)) {
		t.Fatalf("unexpected recent invocations: %+v", report.Recent)
	}

	var buf bytes.Buffer
	if err := Render(&buf, report, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Most used", "git", "75.0%", "Activity 2026-03-01 .. 2026-03-04", "Runs: 4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, Report{}, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No invocations recorded.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
