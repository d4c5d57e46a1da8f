// Package command runs external tools and captures their exit status and
// diagnostic output.
//
// Everything that touches os/exec lives behind the [Runner] interface so the
// pipeline can be exercised with a fake runner in tests.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is reported in Result.Err when a command exceeded its timeout.
var ErrTimeout = errors.New("command timed out")

// Command is a fully built invocation: binary name plus arguments.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration // Zero means no per-invocation limit.
	Stream  bool          // Tee stdout/stderr to the terminal while capturing.
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the outcome of a single invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	TimedOut bool
	Err      error // Start failure, non-zero exit, timeout or cancellation.
}

// OK reports whether the command exited zero without writing diagnostics.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0 && strings.TrimSpace(r.Stderr) == ""
}

// Diagnostic returns the captured stderr, or a description of why the
// command failed when it produced none.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if r.TimedOut {
		return "timed out after " + r.Elapsed.Round(time.Second).String()
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Runner executes a command and reports how it went. Implementations never
// return a Go error for a failed command; failure is part of the Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts cmd and waits for it. When cmd.Timeout is set the process is
// killed once it elapses; cancelling ctx kills it as well.
func (ExecRunner) Run(ctx context.Context, cmd Command) Result {
	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	if cmd.Stream {
		c.Stdout = io.MultiWriter(&stdoutBuf, os.Stdout)
		c.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		c.Stdout = &stdoutBuf
		c.Stderr = &stderrBuf
	}

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:  stdoutBuf.String(),
		Stderr:  stderrBuf.String(),
		Elapsed: time.Since(start),
		Err:     err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		res.ExitCode = -1
	}

	// The parent context wins: an operator abort is not a timeout.
	if ctx.Err() != nil {
		res.Err = ctx.Err()
	} else if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.Err = ErrTimeout
	}
	return res
}
