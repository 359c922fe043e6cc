package rank

// foldHistory pulls the history entries to the front of the list. History is
// most recent first, so it is walked backwards and the most recent command
// ends up at index 0. Commands missing from the list are skipped.
func foldHistory(l *rankedList, history []string) {
	for i := len(history) - 1; i >= 0; i-- {
		id := history[i]
		if l.len() > 0 && l.entries[0].ID == id {
			continue
		}
		if idx := l.indexOf(id); idx > 0 {
			l.moveToFront(idx)
		}
	}
}

// truncateHistory copies at most size unique non-empty ids.
func truncateHistory(history []string, size int) []string {
	out := make([]string, 0, min(len(history), size))
	seen := make(map[string]struct{}, len(history))
	for _, id := range history {
		if len(out) >= size {
			break
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
