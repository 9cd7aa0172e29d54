package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/cdowellmdb/compprune/internal/tui/components"
)

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f any) bool {
	file, ok := f.(*os.File)
	if !ok || file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// taskDoneMsg is sent when the background work finishes.
type taskDoneMsg struct{}

type spinnerModel struct {
	spinner *components.Spinner
	done    bool
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Init()
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + "\n"
}

type taskResult[T any] struct {
	value T
	err   error
}

// RunWithSpinner runs fn while a spinner labelled label animates on out.
// When out is not a terminal, fn runs without any animation. fn always runs
// to completion and its result is returned.
func RunWithSpinner[T any](ctx context.Context, out io.Writer, label string, fn func(context.Context) (T, error)) (T, error) {
	if !IsTerminal(out) {
		return fn(ctx)
	}

	s := components.NewSpinner()
	s.SetStatusText(label)
	s.Start()

	program := tea.NewProgram(&spinnerModel{spinner: s},
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	done := make(chan taskResult[T], 1)
	go func() {
		value, err := fn(ctx)
		done <- taskResult[T]{value: value, err: err}
		program.Send(taskDoneMsg{})
	}()

	// The program stops when fn finishes or ctx is cancelled. Either way
	// the result of fn is what the caller needs.
	_, _ = program.Run()

	res := <-done
	return res.value, res.err
}
