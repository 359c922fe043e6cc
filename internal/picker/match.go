package picker

import (
	"strings"
	"unicode"
)

type match struct {
	id        string
	positions []int
}

// filter keeps candidates containing the query as a subsequence, in their
// original order. The match is case-insensitive unless the query has an
// upper-case letter. Positions are rune indexes into the candidate.
func filter(candidates []string, query string) []match {
	out := make([]match, 0, len(candidates))
	if query == "" {
		for _, id := range candidates {
			out = append(out, match{id: id})
		}
		return out
	}
	fold := !hasUpper(query)
	q := []rune(query)
	if fold {
		q = []rune(strings.ToLower(query))
	}
	for _, id := range candidates {
		if positions, ok := subsequence([]rune(id), q, fold); ok {
			out = append(out, match{id: id, positions: positions})
		}
	}
	return out
}

func subsequence(candidate, query []rune, fold bool) ([]int, bool) {
	positions := make([]int, 0, len(query))
	qi := 0
	for i, r := range candidate {
		if qi == len(query) {
			break
		}
		if fold {
			r = unicode.ToLower(r)
		}
		if r == query[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi < len(query) {
		return nil, false
	}
	return positions, true
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
