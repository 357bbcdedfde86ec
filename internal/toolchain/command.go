// Package toolchain invokes the external programs the build delegates to: the
// Java compiler, the remapping tool and user packaging commands.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dyluth/mcprebuild/internal/printer"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, empty for the current one
	Env  []string // extra KEY=VALUE pairs on top of the process environment
}

// String renders the command line for logs and error reports.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, p := range append([]string{c.Name}, c.Args...) {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			p = fmt.Sprintf("%q", p)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// CommandError reports an external command that could not start or exited
// non-zero.
type CommandError struct {
	Command  Command
	ExitCode int // -1 when the process never ran
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	}
	return fmt.Sprintf("command failed: %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes commands to completion.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes, streaming their output.
type ExecRunner struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool // echo each command line before running it
}

// NewExecRunner creates a runner attached to the terminal.
func NewExecRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr, Verbose: verbose}
}

// Run blocks until the command exits. There is no timeout: compiles of large
// projects and remapping of full platform jars can take minutes.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if r.Verbose {
		printer.Command(c.String())
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Command: c, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &CommandError{Command: c, ExitCode: -1, Err: err}
}
