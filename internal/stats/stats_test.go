package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/runrank/internal/model"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{2, 2, 2}); got != "+++" {
		t.Fatalf("flat series should use the middle glyph: %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestDailyCountsFillsGaps(t *testing.T) {
	loc := time.UTC
	invs := []model.Invocation{
		{InvokedAt: time.Date(2026, 1, 3, 23, 0, 0, 0, loc)},
		{InvokedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, loc)},
		{InvokedAt: time.Date(2026, 1, 3, 1, 0, 0, 0, loc)},
	}
	days := DailyCounts(invs, loc)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %+v", days)
	}
	want := []int{1, 0, 2}
	for i, d := range days {
		if d.Count != want[i] {
			t.Fatalf("day %d: expected %d, got %d", i, want[i], d.Count)
		}
	}
	if days[0].Day.Day() != 1 || days[2].Day.Day() != 3 {
		t.Fatalf("unexpected day range: %v .. %v", days[0].Day, days[2].Day)
	}
}

func TestBucketSumsValues(t *testing.T) {
	got := Bucket([]float64{1, 2, 3, 4, 5, 6}, 3)
	want := []float64{3, 7, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected buckets: %v", got)
		}
	}
	if len(Bucket([]float64{1, 2}, 5)) != 2 {
		t.Fatalf("short input should be copied as is")
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	err := RenderHistory(&buf, []model.Invocation{
		{Command: "git", Args: "status", InvokedAt: time.Now(), ExitCode: 1, DurationMs: 12},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "git status") || !strings.Contains(out, "Exit") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
