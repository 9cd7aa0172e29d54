// Package tui provides the interactive terminal pieces of compprune: a
// confirmation dialog for removal targets and a spinner for long external
// commands.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cdowellmdb/compprune/internal/confirm"
	"github.com/cdowellmdb/compprune/internal/removal"
	"github.com/cdowellmdb/compprune/internal/tui/components"
)

// confirmModel hosts a ConfirmDialog until the user decides.
type confirmModel struct {
	dialog   *components.ConfirmDialog
	approved bool
	decided  bool
}

func newConfirmModel(t removal.Target) *confirmModel {
	d := components.NewConfirmDialog()
	d.Show(fmt.Sprintf("Delete %s?", t.Name), confirm.Message(t), true)
	return &confirmModel{dialog: d}
}

func (m *confirmModel) Init() tea.Cmd {
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case components.ConfirmYesMsg:
		m.approved, m.decided = true, true
		return m, tea.Quit
	case components.ConfirmNoMsg:
		m.decided = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 10 && msg.Width < 80 {
			m.dialog.SetSize(msg.Width - 2)
		}
		return m, nil
	}
	return m, m.dialog.Update(msg)
}

func (m *confirmModel) View() string {
	if m.decided {
		return ""
	}
	return m.dialog.View() + "\n"
}

// DialogConfirmer asks for each target in a bubbletea dialog.
// It follows the same rule as the console prompt: only "y" approves.
type DialogConfirmer struct {
	in  io.Reader
	out io.Writer
}

// NewDialogConfirmer creates a DialogConfirmer. in must be a terminal in
// normal use; tests may pass any reader.
func NewDialogConfirmer(in io.Reader, out io.Writer) *DialogConfirmer {
	return &DialogConfirmer{in: in, out: out}
}

// Confirm implements confirm.Confirmer.
func (d *DialogConfirmer) Confirm(t removal.Target) (bool, error) {
	p := tea.NewProgram(newConfirmModel(t),
		tea.WithInput(d.in),
		tea.WithOutput(d.out),
		tea.WithoutSignalHandler(),
	)

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation dialog: %w", err)
	}

	m, ok := final.(*confirmModel)
	if !ok {
		return false, fmt.Errorf("confirmation dialog: unexpected model %T", final)
	}
	return m.approved, nil
}

var _ confirm.Confirmer = (*DialogConfirmer)(nil)
