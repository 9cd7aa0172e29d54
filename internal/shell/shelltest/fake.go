// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cdowellmdb/compprune/internal/shell"
)

// Response is the canned outcome for one invocation.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// FakeRunner records every command and answers from a table keyed by the
// space-joined argv. Unknown commands succeed with empty output unless
// Default is set.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string][]Response
	Default   *Response
	Calls     []shell.Command
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: make(map[string][]Response)}
}

// On queues a response for the given argv. Multiple responses for the same
// argv are returned in order; the last one repeats.
func (f *FakeRunner) On(argv string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[argv] = append(f.responses[argv], resp)
	return f
}

// Run implements shell.Runner.
func (f *FakeRunner) Run(_ context.Context, cmd shell.Command) (*shell.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, cmd)
	key := strings.Join(cmd.Argv(), " ")

	resp := Response{}
	if queue, ok := f.responses[key]; ok && len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			f.responses[key] = queue[1:]
		}
	} else if f.Default != nil {
		resp = *f.Default
	}

	result := &shell.Result{
		Command:  cmd,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		Combined: resp.Stdout + resp.Stderr,
		ExitCode: resp.ExitCode,
	}
	if resp.Err != nil {
		result.ExitCode = -1
		return result, resp.Err
	}
	return result, nil
}

// Argvs returns the recorded calls as space-joined strings.
func (f *FakeRunner) Argvs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = strings.Join(c.Argv(), " ")
	}
	return out
}

// String implements fmt.Stringer for test failure messages.
func (f *FakeRunner) String() string {
	return fmt.Sprintf("FakeRunner%v", f.Argvs())
}

var _ shell.Runner = (*FakeRunner)(nil)
