// Package main provides the CLI entrypoint for runrank.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/runrank/internal/config"
	"github.com/verte-zerg/runrank/internal/model"
	"github.com/verte-zerg/runrank/internal/picker"
	"github.com/verte-zerg/runrank/internal/rank"
	"github.com/verte-zerg/runrank/internal/runner"
	"github.com/verte-zerg/runrank/internal/savefile"
	"github.com/verte-zerg/runrank/internal/source"
	"github.com/verte-zerg/runrank/internal/stats"
	"github.com/verte-zerg/runrank/internal/statsui"
	"github.com/verte-zerg/runrank/internal/store"
)

const (
	defaultRefreshInterval = 60 * time.Second
	defaultStatsTop        = 20
	defaultHistoryLimit    = 20
)

var (
	flagHistorySize     int
	flagScope           []string
	flagSaveFile        string
	flagDB              string
	flagNoPath          bool
	flagCommandFiles    []string
	flagAutoRefresh     bool
	flagRefreshInterval time.Duration

	launchPrint bool

	listLimit  int
	listCounts bool

	statsTop     int
	statsSince   string
	statsCommand string
	statsPlain   bool

	historyLimit int
)

// launchExitCode carries the exit status of the launched command.
var launchExitCode int

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	if launchExitCode != 0 {
		os.Exit(launchExitCode)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "runrank [-- args...]",
		Short:         "Command launcher ranked by usage",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runLaunchCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&flagHistorySize, "history-size", rank.DefaultHistorySize, "number of recent commands kept on top")
	flags.StringSliceVar(&flagScope, "scope", nil, "only offer commands matching these glob patterns")
	flags.StringVar(&flagSaveFile, "save-file", "", "ranking save file (default: $XDG_DATA_HOME/runrank/ranking.toml)")
	flags.StringVar(&flagDB, "db", "", "usage log database (default: $XDG_DATA_HOME/runrank/runrank.db)")
	flags.BoolVar(&flagNoPath, "no-path", false, "do not enumerate executables in $PATH")
	flags.StringSliceVar(&flagCommandFiles, "commands", nil, "command list files (default: $XDG_CONFIG_HOME/runrank/commands.txt)")

	rootCmd.Flags().BoolVar(&launchPrint, "print", false, "print the selection instead of running it")
	rootCmd.Flags().BoolVar(&flagAutoRefresh, "auto-refresh", false, "re-enumerate commands while the picker is idle")
	rootCmd.Flags().DurationVar(&flagRefreshInterval, "refresh-interval", defaultRefreshInterval, "idle refresh interval")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runLaunchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return fmt.Errorf("picker needs a terminal; use 'runrank list' for plain output")
	}

	keep := source.ScopeFilter(cfg.Scope)
	opts := picker.Options{}
	if cfg.AutoRefresh {
		opts.RefreshInterval = cfg.RefreshInterval
		opts.Refresh = func() ([]string, bool, error) {
			changed, err := engine.Update(ctx)
			if err != nil {
				return nil, false, err
			}
			return engine.Scoped(keep), changed, nil
		}
	}
	m := picker.NewModel(engine.Scoped(keep), opts)
	program := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run picker: %w", err)
	}
	selected, ok := m.Selected()
	if !ok {
		return nil
	}

	if launchPrint {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), selected); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return promoteAndSave(ctx, cfg, engine, selected)
	}

	started := time.Now()
	result, runErr := runner.New().Run(ctx, selected, args)
	if runErr != nil {
		return runErr
	}
	launchExitCode = result.ExitCode

	if err := promoteAndSave(ctx, cfg, engine, selected); err != nil {
		logErrf("%v\n", err)
	}
	logInvocation(ctx, cfg, model.Invocation{
		Command:    selected,
		Args:       joinArgs(args),
		Scope:      strings.Join(cfg.Scope, ","),
		InvokedAt:  started,
		ExitCode:   result.ExitCode,
		DurationMs: result.Duration.Milliseconds(),
	})
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print commands in rank order",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().IntVar(&listLimit, "limit", 0, "print at most N commands (0 = all)")
	cmd.Flags().BoolVar(&listCounts, "counts", false, "prefix each command with its usage count")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	if listLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := openEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	ids := engine.Scoped(source.ScopeFilter(cfg.Scope))
	if listLimit > 0 && len(ids) > listLimit {
		ids = ids[:listLimit]
	}
	out := cmd.OutOrStdout()
	for _, id := range ids {
		line := id
		if listCounts {
			count, _ := engine.Count(id)
			line = fmt.Sprintf("%6d  %s", count, id)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <command>",
		Short: "Count one use of a command without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordCmd,
	}
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	engine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(args[0])
	if err := promoteAndSave(ctx, cfg, engine, id); err != nil {
		return err
	}
	if _, ok := engine.Count(id); !ok {
		logErrf("%s is not a known command; nothing recorded\n", id)
	}
	return nil
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-enumerate commands and rewrite the save file",
		Args:  cobra.NoArgs,
		RunE:  runRefreshCmd,
	}
}

func runRefreshCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := openEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if err := saveState(cfg, engine); err != nil {
		return err
	}
	logErrf("Ranked %d commands, %d with recorded use\n", engine.Len(), len(engine.Data()))
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of commands to show (0 = all)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&statsCommand, "command", "", "only count this command")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print tables instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	sinceTime, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	statsCfg := model.StatsConfig{
		Since:   sinceTime,
		Top:     statsTop,
		Command: statsCommand,
	}
	if !statsPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		program := tea.NewProgram(statsui.NewModel(st, statsCfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, statsCfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if err := stats.Render(cmd.OutOrStdout(), report, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent invocations",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "number of invocations to show (0 = all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	invocations, err := st.ListInvocations(cmd.Context(), model.StatsConfig{}, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), invocations); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path, err := ensureConfigFile(config.DefaultConfigPath())
	if err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return "", fmt.Errorf("failed to write config: %w", err)
		}
	}
	return path, nil
}

// resolveConfig merges the config file with flags. Flags set on the command
// line win over file values.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	historySize := flagHistorySize
	scope := flagScope
	saveFile := flagSaveFile
	dbPath := flagDB
	commandFiles := flagCommandFiles
	autoRefresh := flagAutoRefresh
	refreshInterval := flagRefreshInterval

	applyIntConfig(cmd, "history-size", &historySize, fileCfg.Ranking.HistorySize)
	applyStringConfig(cmd, "save-file", &saveFile, fileCfg.Storage.SaveFile)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.DB)
	applySliceConfig(cmd, "scope", &scope, fileCfg.Sources.Scope)
	applySliceConfig(cmd, "commands", &commandFiles, fileCfg.Sources.Files)
	applyBoolConfig(cmd, "auto-refresh", &autoRefresh, fileCfg.Refresh.Auto)
	if fileCfg.Refresh.Interval != nil && !flagChanged(cmd, "refresh-interval") {
		refreshInterval = fileCfg.Refresh.Interval.Duration
	}
	usePath := true
	if fileCfg.Sources.Path != nil {
		usePath = *fileCfg.Sources.Path
	}
	if flagChanged(cmd, "no-path") {
		usePath = !flagNoPath
	}

	if saveFile == "" {
		saveFile = config.DefaultSaveFilePath()
	}
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	if commandFiles == nil {
		commandFiles = []string{config.DefaultCommandsPath()}
	}
	files := make([]string, 0, len(commandFiles))
	for _, f := range commandFiles {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, config.ExpandHome(f))
		}
	}

	cfg := model.Config{
		HistorySize:     historySize,
		AutoRefresh:     autoRefresh,
		RefreshInterval: refreshInterval,
		SaveFile:        config.ExpandHome(saveFile),
		DBPath:          config.ExpandHome(dbPath),
		UsePath:         usePath,
		CommandFiles:    files,
		Scope:           scope,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.HistorySize < 0 {
		return fmt.Errorf("--history-size must be >= 0")
	}
	if cfg.AutoRefresh && cfg.RefreshInterval <= 0 {
		return fmt.Errorf("--refresh-interval must be > 0")
	}
	if !cfg.UsePath && len(cfg.CommandFiles) == 0 {
		return fmt.Errorf("no command sources: enable $PATH or add command files")
	}
	return nil
}

func buildSource(cfg model.Config) rank.Source {
	var sources source.Multi
	if cfg.UsePath {
		sources = append(sources, source.PathSource{})
	}
	if len(cfg.CommandFiles) > 0 {
		sources = append(sources, source.FileSource{Paths: cfg.CommandFiles})
	}
	return sources
}

// openEngine loads the save file and builds the ranked list. A corrupt save
// file is a hard failure so it never gets overwritten.
func openEngine(ctx context.Context, cfg model.Config) (*rank.Engine, error) {
	state, err := savefile.Load(cfg.SaveFile)
	if err != nil {
		if errors.Is(err, savefile.ErrCorruptState) {
			return nil, fmt.Errorf("%w\nfix or remove the file to start over", err)
		}
		return nil, fmt.Errorf("failed to load save file: %w", err)
	}
	engine := rank.New(buildSource(cfg), rank.WithHistorySize(cfg.HistorySize))
	engine.LoadInitial(state.History, state.Data)
	if err := engine.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to enumerate commands: %w", err)
	}
	return engine, nil
}

func promoteAndSave(ctx context.Context, cfg model.Config, engine *rank.Engine, id string) error {
	if err := engine.Promote(ctx, id); err != nil {
		return fmt.Errorf("failed to record %s: %w", id, err)
	}
	return saveState(cfg, engine)
}

func saveState(cfg model.Config, engine *rank.Engine) error {
	state := savefile.State{
		History: engine.ExtractHistory(),
		Data:    engine.Data(),
	}
	if err := savefile.Save(cfg.SaveFile, state); err != nil {
		return fmt.Errorf("failed to save ranking: %w", err)
	}
	return nil
}

func logInvocation(ctx context.Context, cfg model.Config, inv model.Invocation) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logErrf("failed to open db: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if _, err := st.InsertInvocation(ctx, inv); err != nil {
		logErrf("failed to log invocation: %v\n", err)
	}
}

func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = runner.Quote(arg)
	}
	return strings.Join(quoted, " ")
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# runrank configuration
# Uncomment a value to enable it. CLI flags override config values.

[ranking]
# history-size = %d        # Recent commands kept on top of the list

[refresh]
# auto = false             # Re-enumerate commands while the picker is idle
# interval = %q          # Idle refresh interval

[storage]
# save-file = %q
# db = %q

[sources]
# path = true              # Enumerate executables in $PATH
# files = [%q]
# scope = ["git-*"]        # Only offer commands matching these patterns
`,
		rank.DefaultHistorySize,
		defaultRefreshInterval.String(),
		config.DefaultSaveFilePath(),
		config.DefaultDBPath(),
		config.DefaultCommandsPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
