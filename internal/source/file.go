package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileSource reads commands from text files, one per line. Blank lines and
// lines starting with '#' are skipped. Missing files are ignored.
type FileSource struct {
	Paths []string
}

// Commands implements rank.Source.
func (s FileSource) Commands(ctx context.Context) ([]string, error) {
	var out []string
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := LoadCommands(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load commands from %s: %w", path, err)
		}
		out = append(out, lines...)
	}
	return out, nil
}

// LoadCommands reads one command per line from the provided file path.
func LoadCommands(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only command list.
			_ = cerr
		}
	}()

	var commands []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commands, nil
}
