// Package runner executes a chosen command with the terminal attached.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Result describes a finished command.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Runner starts commands through a shell so command-list entries such as
// "make test" work the same way as bare executables.
type Runner struct {
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Runner wired to the process stdio and $SHELL.
func New() *Runner {
	return &Runner{
		Shell:  os.Getenv("SHELL"),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes command with args. A non-zero exit status is reported in the
// result, not as an error; errors mean the command could not be started.
func (r *Runner) Run(ctx context.Context, command string, args []string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, fmt.Errorf("command is empty")
	}
	cmd := r.command(ctx, CommandLine(command, args))
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start %s: %w", command, err)
	}
	err := cmd.Wait()
	result := Result{Duration: time.Since(started)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to run %s: %w", command, err)
	}
	return result, nil
}

func (r *Runner) command(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return exec.CommandContext(ctx, shell, "-c", line)
}

// CommandLine joins command and shell-quoted args. The command itself is
// passed through unquoted so entries from command files may carry arguments.
func CommandLine(command string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, Quote(arg))
	}
	return strings.Join(parts, " ")
}

// Quote quotes s for a POSIX shell when it contains special characters.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, ch := range s {
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || strings.ContainsRune("-_./=:,+@%", ch)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
