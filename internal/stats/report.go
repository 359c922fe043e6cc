package stats

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/runrank/internal/model"
	"github.com/verte-zerg/runrank/internal/store"
)

const (
	terminalWidthBackup = 80
	recentLimit         = 50
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Commands []model.CommandStat
	Days     []model.DayCount
	Recent   []model.Invocation
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	commands, err := st.CommandStats(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	invocations, err := st.ListInvocations(ctx, cfg, 0)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Commands: commands,
		Days:     DailyCounts(invocations, time.Local),
		Recent:   invocations[:min(len(invocations), recentLimit)],
	}, nil
}

// Render prints the full report sized to width. A width <= 0 uses the
// terminal width of w when it is a terminal.
func Render(w io.Writer, report Report, width int) error {
	if width <= 0 {
		width = terminalWidth(w)
	}
	if err := RenderTopCommands(w, report.Commands, width); err != nil {
		return err
	}
	// Brackets take two cells.
	return RenderActivity(w, report.Days, width-2)
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
