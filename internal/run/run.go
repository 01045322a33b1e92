// Package run executes external commands with fail-fast semantics.
// All of subtool's real work is delegated to external binaries (the entity
// generator and the tunnel client); this package is the single place they
// are invoked from.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external command invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory for the command. Empty means the
	// current directory.
	Dir string

	// InheritStdout streams the command's stdout to the parent process
	// instead of capturing it. Used for status-style commands whose output
	// is the whole point.
	InheritStdout bool
}

// String returns the command in shell-like form, for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// ExitError reports that an external command exited non-zero.
// Code is the command's own exit code, so callers can propagate it
// as the process exit code.
type ExitError struct {
	Cmd    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit status %d: %s", e.Cmd, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

// Logger provides structured logging for command execution.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger is a Logger that discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// OSRunner runs commands via os/exec.
type OSRunner struct {
	log Logger
}

// NewOSRunner creates a Runner backed by os/exec.
func NewOSRunner(log Logger) *OSRunner {
	if log == nil {
		log = NewNopLogger()
	}
	return &OSRunner{log: log}
}

// Run executes the command and blocks until it finishes. A non-zero exit
// is returned as *ExitError carrying the command's exit code and the tail
// of its stderr. Other failures (binary not found, ctx cancelled) are
// returned as plain errors.
func (r *OSRunner) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	if cmd.InheritStdout {
		c.Stdout = os.Stdout
	} else {
		c.Stdout = &stdout
	}
	c.Stderr = &stderr

	r.log.Info("running command", "cmd", cmd.String(), "dir", cmd.Dir)

	err := c.Run()
	if err == nil {
		r.log.Debug("command finished", "cmd", cmd.Name, "stdout", stdout.String())
		return nil
	}

	if stderr.Len() > 0 {
		r.log.Error("command errored", "cmd", cmd.Name, "stderr", stderr.String())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Cmd:    cmd.String(),
			Code:   exitErr.ExitCode(),
			Stderr: stderrTail(stderr.String()),
		}
	}

	return fmt.Errorf("running %s: %w", cmd.Name, err)
}

// All runs the commands in order, stopping at the first failure.
// The error of the failing command is returned unwrapped so its exit
// code survives to the CLI surface.
func All(ctx context.Context, r Runner, cmds ...Command) error {
	for _, cmd := range cmds {
		if err := r.Run(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// stderrTail returns the last few lines of stderr, trimmed, so errors
// stay readable when the external tool is verbose.
func stderrTail(s string) string {
	const maxLines = 5
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
