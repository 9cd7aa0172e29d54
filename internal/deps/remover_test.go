package deps

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdowellmdb/compprune/internal/shell/shelltest"
)

const optionalStderr = "error: The dependency `boto3` could not be found in `project.dependencies`\n" +
	"hint: `boto3` is an optional dependency; try calling `uv remove --optional aws`\n"

func newRemover(runner *shelltest.FakeRunner) *Remover {
	return &Remover{Runner: runner, Dir: "/project", Command: []string{"uv"}}
}

func TestOptionalGroup(t *testing.T) {
	tests := map[string]string{
		optionalStderr: "aws",
		"try calling `uv remove --optional dev-tools` instead": "dev-tools",
		"try calling `pdm remove --optional extra`":            "extra",
		"error: dependency not found":                          "",
		"":                                                     "",
		"try calling `uv add requests`":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, OptionalGroup(in), "OptionalGroup(%q)", in)
	}
}

func TestRemove_PrimarySuccess(t *testing.T) {
	runner := shelltest.NewFakeRunner().On("uv remove requests", shelltest.Response{})

	out := newRemover(runner).Remove(context.Background(), "requests", true)

	assert.Equal(t, StateDone, out.State)
	assert.True(t, out.PrimarySucceeded)
	assert.False(t, out.OptionalAttempted)
	assert.True(t, out.Removed())
	require.Len(t, out.Attempts, 1)
	assert.Equal(t, "uv remove requests", out.Attempts[0].Command)
	assert.Equal(t, []string{"uv remove requests"}, runner.Argvs())
	assert.Equal(t, "/project", runner.Calls[0].Dir)
}

func TestRemove_OptionalFallbackSucceeds(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove boto3", shelltest.Response{ExitCode: 2, Stderr: optionalStderr}).
		On("uv remove boto3 --optional aws", shelltest.Response{})

	out := newRemover(runner).Remove(context.Background(), "boto3", true)

	assert.Equal(t, StateDone, out.State)
	assert.False(t, out.PrimarySucceeded)
	assert.Equal(t, "aws", out.OptionalGroup)
	assert.True(t, out.OptionalAttempted)
	assert.True(t, out.OptionalSucceeded)
	assert.Equal(t, []string{"uv remove boto3", "uv remove boto3 --optional aws"}, runner.Argvs())
}

func TestRemove_OptionalFallbackFails(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove boto3", shelltest.Response{ExitCode: 2, Stderr: optionalStderr}).
		On("uv remove boto3 --optional aws", shelltest.Response{ExitCode: 1, Stderr: "error: lock failed\n"})

	out := newRemover(runner).Remove(context.Background(), "boto3", true)

	assert.Equal(t, StateFailed, out.State)
	assert.True(t, out.OptionalAttempted)
	assert.False(t, out.OptionalSucceeded)
	require.Len(t, out.Attempts, 2, "both attempts keep their diagnostics")
	assert.Equal(t, optionalStderr, out.Attempts[0].Stderr)
	assert.Equal(t, "error: lock failed\n", out.Attempts[1].Stderr)
}

func TestRemove_HintOnStdoutIsIgnored(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove boto3", shelltest.Response{ExitCode: 2, Stdout: optionalStderr})

	out := newRemover(runner).Remove(context.Background(), "boto3", true)

	assert.Equal(t, StateFailed, out.State)
	assert.False(t, out.OptionalAttempted)
	assert.Len(t, runner.Calls, 1)
}

func TestRemove_NoHintFailsAfterOneAttempt(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove ghost", shelltest.Response{ExitCode: 2, Stderr: "error: not found\n"})

	out := newRemover(runner).Remove(context.Background(), "ghost", true)

	assert.Equal(t, StateFailed, out.State)
	assert.Empty(t, out.OptionalGroup)
	assert.Len(t, runner.Calls, 1)
}

func TestRemove_FallbackDisabled(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove boto3", shelltest.Response{ExitCode: 2, Stderr: optionalStderr})

	out := newRemover(runner).Remove(context.Background(), "boto3", false)

	assert.Equal(t, StateFailed, out.State)
	assert.False(t, out.OptionalAttempted)
	assert.Empty(t, out.OptionalGroup)
	assert.Equal(t, []string{"uv remove boto3"}, runner.Argvs())
}

func TestRemove_StartFailureIsAFailedAttempt(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove requests", shelltest.Response{Err: errors.New("exec: \"uv\": executable file not found in $PATH")})

	out := newRemover(runner).Remove(context.Background(), "requests", true)

	assert.Equal(t, StateFailed, out.State)
	require.Len(t, out.Attempts, 1)
	assert.Equal(t, -1, out.Attempts[0].ExitCode)
	assert.Contains(t, out.Attempts[0].Error, "executable file not found")
}

func TestRemoveAll_FailuresDoNotAbortBatch(t *testing.T) {
	runner := shelltest.NewFakeRunner().
		On("uv remove a", shelltest.Response{ExitCode: 1, Stderr: "boom"}).
		On("uv remove b", shelltest.Response{ExitCode: 1, Stderr: optionalStderr}).
		On("uv remove b --optional aws", shelltest.Response{}).
		On("uv remove c", shelltest.Response{})

	outcomes := newRemover(runner).RemoveAll(context.Background(), []string{"a", "b", "c", "a"}, true)

	require.Len(t, outcomes, 4)
	assert.Equal(t, []State{StateFailed, StateDone, StateDone, StateFailed},
		[]State{outcomes[0].State, outcomes[1].State, outcomes[2].State, outcomes[3].State})
	assert.Equal(t, []string{
		"uv remove a",
		"uv remove b",
		"uv remove b --optional aws",
		"uv remove c",
		"uv remove a",
	}, runner.Argvs())

	s := Summarize(outcomes)
	assert.Equal(t, Summary{Total: 4, Removed: 2, RemovedOptional: 1, Failed: 2}, s)
}

func TestRemoveAll_CancelledContext(t *testing.T) {
	runner := shelltest.NewFakeRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := newRemover(runner).RemoveAll(ctx, []string{"a", "b"}, true)

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, StateFailed, o.State)
		assert.NotEmpty(t, o.Attempts[0].Error)
	}
	assert.Empty(t, runner.Calls)
}

func TestRemoveAll_DryRun(t *testing.T) {
	runner := shelltest.NewFakeRunner()
	r := newRemover(runner)
	r.DryRun = true

	outcomes := r.RemoveAll(context.Background(), []string{"requests"}, true)

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatePlanned, outcomes[0].State)
	assert.True(t, outcomes[0].Attempts[0].Skipped)
	assert.Equal(t, "uv remove requests", outcomes[0].Attempts[0].Command)
	assert.Empty(t, runner.Calls)
	assert.Equal(t, Summary{Total: 1, Planned: 1}, Summarize(outcomes))
}

func TestRemover_CommandWithLeadingArgs(t *testing.T) {
	runner := shelltest.NewFakeRunner()
	r := &Remover{Runner: runner, Command: []string{"uv", "--directory", "backend"}}

	r.Remove(context.Background(), "requests", true)

	assert.Equal(t, []string{"uv --directory backend remove requests"}, runner.Argvs())
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StatePlanned.Terminal())
	assert.False(t, StatePending.Terminal())
	assert.False(t, StatePrimaryAttempted.Terminal())
	assert.False(t, StateOptionalAttempted.Terminal())
}
