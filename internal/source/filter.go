package source

import (
	"context"
	"path"
	"strings"

	"github.com/verte-zerg/runrank/internal/rank"
)

// FilterFunc returns true when a command should be kept.
type FilterFunc func(string) bool

// ScopeFilter keeps commands matching any of the glob patterns. Patterns use
// path.Match syntax; a pattern without metacharacters is a prefix match.
// An empty pattern list keeps everything.
func ScopeFilter(patterns []string) FilterFunc {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return func(id string) bool {
		for _, p := range cleaned {
			if !strings.ContainsAny(p, `*?[\`) {
				if strings.HasPrefix(id, p) {
					return true
				}
				continue
			}
			if ok, err := path.Match(p, id); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// Filtered drops commands rejected by Keep.
type Filtered struct {
	Source rank.Source
	Keep   FilterFunc
}

// Commands implements rank.Source.
func (f Filtered) Commands(ctx context.Context) ([]string, error) {
	ids, err := f.Source.Commands(ctx)
	if err != nil || f.Keep == nil {
		return ids, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if f.Keep(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func validCommandName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch <= ' ' || ch == 0x7f {
			return false
		}
	}
	return true
}
