package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/runrank/internal/model"
)

const sparkChars = " .:-=+*#%@"

const dayLayout = "2006-01-02"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DailyCounts buckets invocations by local calendar day, oldest first.
// Days without invocations between the first and last one are included.
func DailyCounts(invocations []model.Invocation, loc *time.Location) []model.DayCount {
	if len(invocations) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	counts := map[string]int{}
	var first, last time.Time
	for i, inv := range invocations {
		t := inv.InvokedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		counts[day.Format(dayLayout)]++
		if i == 0 || day.Before(first) {
			first = day
		}
		if i == 0 || day.After(last) {
			last = day
		}
	}
	var out []model.DayCount
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		out = append(out, model.DayCount{Day: day, Count: counts[day.Format(dayLayout)]})
	}
	return out
}

// Bucket sums consecutive values so the result has at most width entries.
func Bucket(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		for _, v := range values[start:end] {
			out[i] += v
		}
	}
	return out
}

// RenderTopCommands prints the most used commands.
func RenderTopCommands(w io.Writer, rows []model.CommandStat, width int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No invocations recorded.")
		return err
	}
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	nameWidth := 0
	if width > 0 {
		// Leave room for the numeric columns.
		nameWidth = max(width-48, 12)
	}

	headers := []string{"#", "Command", "Runs", "Share", "Failed", "Avg (ms)", "Last run"}
	tableRows := make([][]string, 0, len(rows))
	for i, r := range rows {
		share := 0.0
		if total > 0 {
			share = float64(r.Count) / float64(total) * 100
		}
		avg := 0.0
		if r.Count > 0 {
			avg = float64(r.TotalMs) / float64(r.Count)
		}
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(r.Command, nameWidth),
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%.1f%%", share),
			fmt.Sprintf("%d", r.Failures),
			fmt.Sprintf("%.0f", avg),
			r.LastInvoked.Local().Format("2006-01-02 15:04"),
		})
	}
	if _, err := fmt.Fprintln(w, "Most used"); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderActivity prints a per-day sparkline of invocations.
func RenderActivity(w io.Writer, days []model.DayCount, width int) error {
	if len(days) == 0 {
		return nil
	}
	values := make([]float64, len(days))
	total := 0
	peak := days[0]
	for i, d := range days {
		values[i] = float64(d.Count)
		total += d.Count
		if d.Count > peak.Count {
			peak = d
		}
	}
	if width > 0 {
		values = Bucket(values, width)
	}
	lines := []string{
		fmt.Sprintf("Activity %s .. %s", days[0].Day.Format(dayLayout), days[len(days)-1].Day.Format(dayLayout)),
		"[" + Sparkline(values) + "]",
		fmt.Sprintf("Runs: %d  Days: %d  Peak: %d on %s", total, len(days), peak.Count, peak.Day.Format(dayLayout)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints invocations newest first.
func RenderHistory(w io.Writer, invocations []model.Invocation) error {
	if len(invocations) == 0 {
		_, err := fmt.Fprintln(w, "No invocations recorded.")
		return err
	}
	headers := []string{"When", "Command", "Exit", "Time (ms)"}
	rows := make([][]string, 0, len(invocations))
	for _, inv := range invocations {
		command := inv.Command
		if inv.Args != "" {
			command += " " + inv.Args
		}
		rows = append(rows, []string{
			inv.InvokedAt.Local().Format("2006-01-02 15:04:05"),
			command,
			fmt.Sprintf("%d", inv.ExitCode),
			fmt.Sprintf("%d", inv.DurationMs),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
