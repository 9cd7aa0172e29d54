// Package shell runs external commands synchronously and captures their
// output. A non-zero exit status is reported through Result.ExitCode, never
// as an error: an error means the process could not be run at all.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process exits.
const waitDelay = 2 * time.Second

// Command describes one external invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the current environment.
	Env []string
}

// Argv returns the full argument vector including the executable name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Result is the captured outcome of a command.
type Result struct {
	// Command is the command that produced this result.
	Command Command
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
	// Combined is stdout and stderr interleaved in the order they were written.
	Combined string
	// ExitCode is the process exit status (0 = success).
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Runner executes commands. Implementations must capture both streams.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Live, when non-nil, receives a copy of the combined output as it is produced.
	Live io.Writer
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and waits for it to finish.
// It returns an error only when the process could not be started or was
// killed through ctx; a non-zero exit is reported in Result.ExitCode.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //#nosec G204 -- commands come from the project's own config
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	combined := &lockedBuffer{}
	var combinedW io.Writer = combined
	if r.Live != nil {
		combinedW = io.MultiWriter(combined, r.Live)
	}
	cmd.Stdout = io.MultiWriter(&stdout, combinedW)
	cmd.Stderr = io.MultiWriter(&stderr, combinedW)

	err := cmd.Run()

	result := &Result{
		Command:  c,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
	}

	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		// A grandchild kept the pipes open after the command itself exited.
		result.ExitCode = cmd.ProcessState.ExitCode()
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, nil
		}
		result.ExitCode = -1
		return result, err
	}

	return result, nil
}

// lockedBuffer serialises writes from the stdout and stderr copy goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
