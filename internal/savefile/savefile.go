// Package savefile reads and writes the persisted ranking.
//
// The file is a TOML document with a schema version, the history (most
// recent first) and the usage ledger:
//
//	version = 1
//	history = ["make", "git"]
//
//	[[data]]
//	id = "git"
//	count = 12
//
// A missing or blank file is an empty state. Any other content that does not
// match the schema is reported as ErrCorruptState.
package savefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/runrank/internal/rank"
)

// Version is the schema version written by Encode.
const Version = 1

// ErrCorruptState marks a save file that exists but cannot be trusted.
var ErrCorruptState = errors.New("corrupt save file")

// State is the persisted part of the engine.
type State struct {
	History []string
	Data    []rank.Entry
}

type fileState struct {
	Version int         `toml:"version"`
	History []string    `toml:"history"`
	Data    []fileEntry `toml:"data"`
}

type fileEntry struct {
	ID    string `toml:"id"`
	Count int64  `toml:"count"`
}

// Encode writes state as a TOML document.
func Encode(w io.Writer, state State) error {
	fs := fileState{
		Version: Version,
		History: state.History,
		Data:    make([]fileEntry, 0, len(state.Data)),
	}
	if fs.History == nil {
		fs.History = []string{}
	}
	for _, entry := range state.Data {
		count := entry.Count
		if count > math.MaxInt64 {
			count = math.MaxInt64
		}
		fs.Data = append(fs.Data, fileEntry{ID: entry.ID, Count: int64(count)})
	}
	if _, err := io.WriteString(w, "# runrank ranking state. Managed by runrank.\n"); err != nil {
		return err
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "  "
	return enc.Encode(fs)
}

// Decode parses a save file. Blank input yields an empty state.
func Decode(r io.Reader) (State, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return State{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return State{}, nil
	}

	var fs fileState
	meta, err := toml.Decode(string(raw), &fs)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return State{}, fmt.Errorf("%w: unknown keys %s", ErrCorruptState, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("version") {
		return State{}, fmt.Errorf("%w: missing version", ErrCorruptState)
	}
	if fs.Version != Version {
		return State{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptState, fs.Version)
	}
	return validate(fs)
}

func validate(fs fileState) (State, error) {
	state := State{
		History: make([]string, 0, len(fs.History)),
		Data:    make([]rank.Entry, 0, len(fs.Data)),
	}
	seen := map[string]struct{}{}
	for i, id := range fs.History {
		if id == "" {
			return State{}, fmt.Errorf("%w: empty history id at %d", ErrCorruptState, i)
		}
		if _, ok := seen[id]; ok {
			return State{}, fmt.Errorf("%w: duplicate history id %q", ErrCorruptState, id)
		}
		seen[id] = struct{}{}
		state.History = append(state.History, id)
	}

	seen = map[string]struct{}{}
	for i, entry := range fs.Data {
		if entry.ID == "" {
			return State{}, fmt.Errorf("%w: empty data id at %d", ErrCorruptState, i)
		}
		if entry.Count <= 0 {
			return State{}, fmt.Errorf("%w: count for %q must be positive", ErrCorruptState, entry.ID)
		}
		if _, ok := seen[entry.ID]; ok {
			return State{}, fmt.Errorf("%w: duplicate data id %q", ErrCorruptState, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		state.Data = append(state.Data, rank.Entry{ID: entry.ID, Count: uint64(entry.Count)})
	}
	return state, nil
}

// Load reads the save file at path. A missing file is an empty state.
func Load(path string) (State, error) {
	if path == "" {
		return State{}, fmt.Errorf("save file path is empty")
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to open save file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only save file.
			_ = cerr
		}
	}()
	state, err := Decode(file)
	if err != nil {
		return State{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return state, nil
}

// Save writes state to path through a temp file and rename.
func Save(path string, state State) error {
	if path == "" {
		return fmt.Errorf("save file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create save file dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "ranking-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Encode(tmpFile, state); err != nil {
		return fmt.Errorf("failed to encode save file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}
