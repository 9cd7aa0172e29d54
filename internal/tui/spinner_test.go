package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdowellmdb/compprune/internal/tui/components"
)

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(nil))
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f), "regular files are not terminals")
}

func TestRunWithSpinner_NonTerminalRunsDirectly(t *testing.T) {
	var out bytes.Buffer

	got, err := RunWithSpinner(context.Background(), &out, "Running detector", func(context.Context) (string, error) {
		return "report", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "report", got)
	assert.Empty(t, out.String(), "no animation without a terminal")
}

func TestRunWithSpinner_ReturnsError(t *testing.T) {
	boom := errors.New("boom")

	_, err := RunWithSpinner(context.Background(), &bytes.Buffer{}, "Running detector", func(context.Context) (int, error) {
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestSpinnerModel_QuitsWhenDone(t *testing.T) {
	s := components.NewSpinner()
	s.SetStatusText("Running detector")
	m := &spinnerModel{spinner: s}

	assert.Contains(t, m.View(), "Running detector")

	_, cmd := m.Update(taskDoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
