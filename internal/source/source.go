// Package source enumerates the commands a user can launch.
package source

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/verte-zerg/runrank/internal/rank"
)

// PathSource lists executables found in the directories of a PATH-style
// list. When a name appears in several directories the first one wins.
type PathSource struct {
	// PathList is split with filepath.SplitList. Empty means $PATH.
	PathList string
}

// Commands implements rank.Source.
func (s PathSource) Commands(ctx context.Context) ([]string, error) {
	pathList := s.PathList
	if pathList == "" {
		pathList = os.Getenv("PATH")
	}
	var out []string
	seen := map[string]struct{}{}
	for _, dir := range filepath.SplitList(pathList) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Unreadable or stale PATH entries are common.
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if _, ok := seen[name]; ok {
				continue
			}
			if !validCommandName(name) || !isExecutable(dir, entry) {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out, nil
}

func isExecutable(dir string, entry os.DirEntry) bool {
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode().Perm()&0o111 != 0
}

// Multi concatenates the commands of several sources in order.
type Multi []rank.Source

// Commands implements rank.Source.
func (m Multi) Commands(ctx context.Context) ([]string, error) {
	var out []string
	for _, src := range m {
		ids, err := src.Commands(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}
