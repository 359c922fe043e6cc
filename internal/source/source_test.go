package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/verte-zerg/runrank/internal/rank"
)

func writeExecutable(t *testing.T, dir, name string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestPathSourceListsExecutables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not used on windows")
	}
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, first, "tool", 0o755)
	writeExecutable(t, first, "notes.txt", 0o644)
	writeExecutable(t, first, ".hidden", 0o755)
	if err := os.Mkdir(filepath.Join(first, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeExecutable(t, second, "tool", 0o755)
	writeExecutable(t, second, "other", 0o755)

	pathList := first + string(os.PathListSeparator) + filepath.Join(first, "missing") + string(os.PathListSeparator) + second
	ids, err := PathSource{PathList: pathList}.Commands(context.Background())
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"other", "tool"}) {
		t.Fatalf("unexpected commands: %v", ids)
	}
}

func TestFileSourceSkipsCommentsAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.txt")
	content := "# favourites\nmake test\n\n  htop  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := FileSource{Paths: []string{filepath.Join(dir, "absent.txt"), path}}
	ids, err := src.Commands(context.Background())
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	if !slices.Equal(ids, []string{"make test", "htop"}) {
		t.Fatalf("unexpected commands: %v", ids)
	}
}

func TestMultiAndFilteredCompose(t *testing.T) {
	a := rank.SourceFunc(func(context.Context) ([]string, error) {
		return []string{"git-log", "ls"}, nil
	})
	b := rank.SourceFunc(func(context.Context) ([]string, error) {
		return []string{"git-add"}, nil
	})
	src := Filtered{Source: Multi{a, b}, Keep: ScopeFilter([]string{"git-"})}
	ids, err := src.Commands(context.Background())
	if err != nil {
		t.Fatalf("commands: %v", err)
	}
	if !slices.Equal(ids, []string{"git-log", "git-add"}) {
		t.Fatalf("unexpected commands: %v", ids)
	}
}

func TestMultiPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	src := Multi{rank.SourceFunc(func(context.Context) ([]string, error) {
		return nil, boom
	})}
	if _, err := src.Commands(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
