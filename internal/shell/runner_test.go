package shell

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestExecRunner_Success(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	res, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "pwd; echo oops >&2"},
		Dir:  dir,
	})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, filepath.Base(dir))
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Contains(t, res.Combined, "oops")
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)

	res, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo failing >&2; exit 3"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "failing\n", res.Stderr)
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	res, err := NewExecRunner().Run(context.Background(), Command{Name: "compprune-definitely-missing-binary"})
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
	assert.False(t, res.Success())
}

func TestExecRunner_Env(t *testing.T) {
	skipOnWindows(t)

	res, err := NewExecRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $COMPPRUNE_STAGE"},
		Env:  []string{"COMPPRUNE_STAGE=components"},
	})
	require.NoError(t, err)
	assert.Equal(t, "components\n", res.Stdout)
}

func TestExecRunner_Live(t *testing.T) {
	skipOnWindows(t)

	var live bytes.Buffer
	r := &ExecRunner{Live: &live}
	_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo streamed"}})
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", live.String())
}

func TestExecRunner_ContextCancellation(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := NewExecRunner().Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 10"}})
	require.Error(t, err)
	assert.False(t, res.Success())
}

func TestCommand_String(t *testing.T) {
	c := Command{Name: "uv", Args: []string{"remove", "requests"}}
	assert.Equal(t, "uv remove requests", c.String())
	assert.Equal(t, []string{"uv", "remove", "requests"}, c.Argv())
}
