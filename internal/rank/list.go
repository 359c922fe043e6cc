package rank

// rankedList keeps the ranked entries and the display projection parallel.
// Every positional mutation is applied to both slices at the same index.
type rankedList struct {
	entries []*Entry
	display []string
}

func newRankedList(entries []*Entry) *rankedList {
	l := &rankedList{entries: entries}
	l.project()
	return l
}

func (l *rankedList) project() {
	l.display = make([]string, len(l.entries))
	for i, e := range l.entries {
		l.display[i] = e.ID
	}
}

func (l *rankedList) len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *rankedList) indexOf(id string) int {
	if l == nil {
		return -1
	}
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *rankedList) removeAt(i int) *Entry {
	e := l.entries[i]
	copy(l.entries[i:], l.entries[i+1:])
	l.entries[len(l.entries)-1] = nil
	l.entries = l.entries[:len(l.entries)-1]

	copy(l.display[i:], l.display[i+1:])
	l.display = l.display[:len(l.display)-1]
	return e
}

func (l *rankedList) insertAt(i int, e *Entry) {
	l.entries = append(l.entries, nil)
	copy(l.entries[i+1:], l.entries[i:])
	l.entries[i] = e

	l.display = append(l.display, "")
	copy(l.display[i+1:], l.display[i:])
	l.display[i] = e.ID
}

// moveToFront moves the entry at i to index 0.
func (l *rankedList) moveToFront(i int) {
	if i <= 0 {
		return
	}
	l.insertAt(0, l.removeAt(i))
}

// resettle moves the entry at pos forward to the first slot whose entry ranks
// after it. The search is first fit; the entry only moves when that slot is
// beyond its immediate successor. With no such slot it goes to the end.
func (l *rankedList) resettle(pos int) {
	if pos < 0 || pos >= len(l.entries)-1 {
		return
	}
	item := *l.entries[pos]
	target := len(l.entries)
	for q := pos + 1; q < len(l.entries); q++ {
		if Before(item, *l.entries[q]) {
			target = q
			break
		}
	}
	if target <= pos+1 {
		return
	}
	e := l.removeAt(pos)
	l.insertAt(target-1, e)
}
