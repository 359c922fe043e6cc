package rank

import (
	"context"
	"errors"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// DefaultHistorySize is the number of recent commands kept in the history.
const DefaultHistorySize = 7

// ErrRebuildInProgress is returned when a rebuild is requested while another
// one is still running, e.g. from a Source that calls back into the engine.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

// Source enumerates the commands currently available to the user.
type Source interface {
	Commands(ctx context.Context) ([]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]string, error)

// Commands implements Source.
func (f SourceFunc) Commands(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistorySize sets how many recent commands are extracted as history.
func WithHistorySize(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.historySize = n
		}
	}
}

// Engine owns the ranked list, the usage ledger and the history.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	source      Source
	historySize int

	list    *rankedList
	ledger  []*Entry
	byID    map[string]*Entry
	history []string

	built      bool
	rebuilding bool
	sum        uint64
}

// New returns an engine that enumerates commands through src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		source:      src,
		historySize: DefaultHistorySize,
		byID:        map[string]*Entry{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HistorySize returns the configured history cap.
func (e *Engine) HistorySize() int {
	return e.historySize
}

// LoadInitial stores persisted history and ledger for the next Rebuild.
// Ledger entries with an empty id or a zero count are ignored; for duplicate
// ids the first one wins. Any previously built list is discarded.
func (e *Engine) LoadInitial(history []string, data []Entry) {
	e.ledger = make([]*Entry, 0, len(data))
	e.byID = make(map[string]*Entry, len(data))
	for _, d := range data {
		if d.ID == "" || d.Count == 0 {
			continue
		}
		if _, ok := e.byID[d.ID]; ok {
			continue
		}
		entry := &Entry{ID: d.ID, Count: d.Count}
		e.ledger = append(e.ledger, entry)
		e.byID[d.ID] = entry
	}
	e.history = truncateHistory(history, e.historySize)
	e.list = nil
	e.built = false
	e.sum = 0
}

// Rebuild enumerates the live commands and merges them with the ledger.
// The merged list is sorted once and the history is folded back on top.
func (e *Engine) Rebuild(ctx context.Context) error {
	_, err := e.refresh(ctx, true)
	return err
}

// Update rebuilds only when the enumerated command set differs from the one
// used by the last rebuild. It reports whether a rebuild happened.
func (e *Engine) Update(ctx context.Context) (bool, error) {
	return e.refresh(ctx, false)
}

func (e *Engine) refresh(ctx context.Context, force bool) (bool, error) {
	if e.rebuilding {
		return false, ErrRebuildInProgress
	}
	e.rebuilding = true
	defer func() {
		e.rebuilding = false
	}()

	var ids []string
	if e.source != nil {
		var err error
		ids, err = e.source.Commands(ctx)
		if err != nil {
			return false, err
		}
	}
	unique := uniqueIDs(ids)
	sum := fingerprint(unique)
	if !force && e.built && sum == e.sum {
		return false, nil
	}
	e.rebuildFrom(unique)
	e.sum = sum
	return true, nil
}

func (e *Engine) rebuildFrom(ids []string) {
	history := e.ExtractHistory()

	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}

	entries := make([]*Entry, 0, len(ids))
	placed := make(map[string]struct{}, len(ids))
	if e.list != nil {
		for _, entry := range e.list.entries {
			if _, ok := live[entry.ID]; ok {
				entries = append(entries, entry)
				placed[entry.ID] = struct{}{}
			}
		}
	}
	var fresh []*Entry
	for _, id := range ids {
		if _, ok := placed[id]; ok {
			continue
		}
		if entry, ok := e.byID[id]; ok {
			entries = append(entries, entry)
			continue
		}
		fresh = append(fresh, &Entry{ID: id})
	}
	entries = append(entries, fresh...)
	sortEntries(entries)

	list := newRankedList(entries)
	foldHistory(list, history)
	e.list = list
	e.history = history
	e.built = true
}

// Promote records one invocation of id and moves it to the front. An unknown
// id triggers a single rebuild; if it is still unknown the call is a no-op.
// Only errors from the Source during that rebuild are returned.
func (e *Engine) Promote(ctx context.Context, id string) error {
	idx := e.list.indexOf(id)
	if idx < 0 {
		if e.rebuilding {
			return nil
		}
		if err := e.Rebuild(ctx); err != nil {
			return err
		}
		idx = e.list.indexOf(id)
		if idx < 0 {
			return nil
		}
	}

	entry := e.list.entries[idx]
	if entry.Count == 0 {
		e.ledger = append(e.ledger, entry)
		e.byID[entry.ID] = entry
	}
	entry.Count++

	if idx == 0 {
		return nil
	}
	e.list.moveToFront(idx)
	e.list.resettle(idx)
	return nil
}

// ExtractHistory returns up to HistorySize ids from the front of the list,
// most recent first. Before the first rebuild it returns the loaded history.
func (e *Engine) ExtractHistory() []string {
	if !e.built {
		return slices.Clone(e.history)
	}
	n := min(e.historySize, e.list.len())
	return slices.Clone(e.list.display[:n])
}

// Display returns the ranked ids in order.
func (e *Engine) Display() []string {
	if e.list == nil {
		return nil
	}
	return slices.Clone(e.list.display)
}

// Scoped returns the ranked ids accepted by keep, in rank order.
func (e *Engine) Scoped(keep func(id string) bool) []string {
	if e.list == nil {
		return nil
	}
	if keep == nil {
		return e.Display()
	}
	out := make([]string, 0, len(e.list.display))
	for _, id := range e.list.display {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

// Entries returns a copy of the ranked list.
func (e *Engine) Entries() []Entry {
	if e.list == nil {
		return nil
	}
	out := make([]Entry, len(e.list.entries))
	for i, entry := range e.list.entries {
		out[i] = *entry
	}
	return out
}

// Data returns a copy of the ledger in first-invocation order.
func (e *Engine) Data() []Entry {
	out := make([]Entry, len(e.ledger))
	for i, entry := range e.ledger {
		out[i] = *entry
	}
	return out
}

// Count returns the invocation count of id and whether id is ranked.
func (e *Engine) Count(id string) (uint64, bool) {
	idx := e.list.indexOf(id)
	if idx < 0 {
		return 0, false
	}
	return e.list.entries[idx].Count, true
}

// Len returns the number of ranked commands.
func (e *Engine) Len() int {
	return e.list.len()
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
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

func fingerprint(ids []string) uint64 {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	d := xxhash.New()
	for _, id := range sorted {
		_, _ = d.WriteString(id)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
