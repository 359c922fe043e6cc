package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/runrank/internal/config"
	"github.com/verte-zerg/runrank/internal/model"
	"github.com/verte-zerg/runrank/internal/savefile"
)

func setupHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func writeCommands(t *testing.T, dir string, commands ...string) string {
	t.Helper()
	path := filepath.Join(dir, "commands.txt")
	if err := os.WriteFile(path, []byte(strings.Join(commands, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write commands: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecordThenList(t *testing.T) {
	dir := setupHome(t)
	commands := writeCommands(t, dir, "beta", "alpha", "gamma")

	if _, err := execute(t, "record", "gamma", "--no-path", "--commands", commands); err != nil {
		t.Fatalf("record: %v", err)
	}
	out, err := execute(t, "list", "--counts", "--no-path", "--commands", commands)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "     1  gamma\n     0  beta\n     0  alpha\n"
	if out != want {
		t.Fatalf("unexpected list output:\n%q\nwant\n%q", out, want)
	}

	if _, err := execute(t, "record", "beta", "--no-path", "--commands", commands); err != nil {
		t.Fatalf("record: %v", err)
	}
	out, err = execute(t, "list", "--no-path", "--commands", commands, "--limit", "2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "beta\ngamma\n" {
		t.Fatalf("unexpected list output: %q", out)
	}

	state, err := savefile.Load(config.DefaultSaveFilePath())
	if err != nil {
		t.Fatalf("load save file: %v", err)
	}
	if len(state.Data) != 2 || state.Data[0].ID != "gamma" || state.Data[1].ID != "beta" {
		t.Fatalf("unexpected ledger: %+v", state.Data)
	}
}

func TestRecordUnknownCommandIsNoop(t *testing.T) {
	dir := setupHome(t)
	commands := writeCommands(t, dir, "alpha")

	if _, err := execute(t, "record", "missing", "--no-path", "--commands", commands); err != nil {
		t.Fatalf("record: %v", err)
	}
	state, err := savefile.Load(config.DefaultSaveFilePath())
	if err != nil {
		t.Fatalf("load save file: %v", err)
	}
	if len(state.Data) != 0 {
		t.Fatalf("unknown command must not be recorded: %+v", state.Data)
	}
}

func TestListScope(t *testing.T) {
	dir := setupHome(t)
	commands := writeCommands(t, dir, "git-log", "ls", "git-status")

	out, err := execute(t, "list", "--no-path", "--commands", commands, "--scope", "git-*")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "git-log\ngit-status\n" {
		t.Fatalf("unexpected scoped output: %q", out)
	}
}

func TestCorruptSaveFileFails(t *testing.T) {
	dir := setupHome(t)
	commands := writeCommands(t, dir, "alpha")
	saveFile := filepath.Join(dir, "ranking.toml")
	if err := os.WriteFile(saveFile, []byte("version = 99\n"), 0o644); err != nil {
		t.Fatalf("write save file: %v", err)
	}

	_, err := execute(t, "refresh", "--no-path", "--commands", commands, "--save-file", saveFile)
	if !errors.Is(err, savefile.ErrCorruptState) {
		t.Fatalf("expected corrupt state error, got %v", err)
	}
	data, err := os.ReadFile(saveFile)
	if err != nil || string(data) != "version = 99\n" {
		t.Fatalf("corrupt save file must be left untouched: %q (%v)", data, err)
	}
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	dir := setupHome(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `
[ranking]
history-size = 3

[refresh]
auto = true
interval = "5s"

[sources]
path = false
files = ["~/cmds.txt"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--history-size", "9"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.HistorySize != 9 {
		t.Fatalf("flag should win, got history size %d", cfg.HistorySize)
	}
	if !cfg.AutoRefresh || cfg.RefreshInterval != 5*time.Second {
		t.Fatalf("unexpected refresh settings: %+v", cfg)
	}
	if cfg.UsePath {
		t.Fatalf("path enumeration should be disabled by config")
	}
	if len(cfg.CommandFiles) != 1 || cfg.CommandFiles[0] != filepath.Join(dir, "cmds.txt") {
		t.Fatalf("unexpected command files: %v", cfg.CommandFiles)
	}
	if cfg.SaveFile != config.DefaultSaveFilePath() {
		t.Fatalf("unexpected save file: %s", cfg.SaveFile)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{HistorySize: 7, UsePath: true}
	if err := validateConfig(base); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cases := []model.Config{
		{HistorySize: -1, UsePath: true},
		{HistorySize: 7, UsePath: true, AutoRefresh: true},
		{HistorySize: 7},
	}
	for _, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	setupHome(t)
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template should be valid TOML: %v", err)
	}
	if cfg.Ranking.HistorySize != nil || cfg.Sources.Path != nil {
		t.Fatalf("template values should be commented out: %+v", cfg)
	}
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runrank", "config.toml")
	if _, err := ensureConfigFile(path); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.WriteFile(path, []byte("[ranking]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "[ranking]\n" {
		t.Fatalf("existing config overwritten: %q (%v)", data, err)
	}
}
