// Package rank implements the ranked command cache.
package rank

import "sort"

// Entry is a command in the ranking. Count 0 means the command is known but
// has never been invoked.
type Entry struct {
	ID    string
	Count uint64
}

// Before reports whether a ranks ahead of b: higher count first, then the
// shorter name, then the lexicographically smaller name.
func Before(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	if len(a.ID) != len(b.ID) {
		return len(a.ID) < len(b.ID)
	}
	return a.ID < b.ID
}

func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Before(*entries[i], *entries[j])
	})
}
