// Package confirm gates each removal target behind an approval decision.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cdowellmdb/compprune/internal/errors"
	"github.com/cdowellmdb/compprune/internal/removal"
)

// Confirmer decides whether a target may be deleted.
// An error is treated by callers as a rejection of that target only.
type Confirmer interface {
	Confirm(t removal.Target) (bool, error)
}

// Func adapts a plain function to Confirmer.
type Func func(t removal.Target) (bool, error)

// Confirm implements Confirmer.
func (f Func) Confirm(t removal.Target) (bool, error) {
	return f(t)
}

// Message renders the confirmation text for a target.
func Message(t removal.Target) string {
	if t.WholeDirectory() {
		return fmt.Sprintf("The entire directory %q and all of its contents will be deleted.", t.Name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The following files in %q will be deleted:", t.Name)
	for _, f := range t.Files {
		sb.WriteString("\n  - ")
		sb.WriteString(f)
	}
	return sb.String()
}

// Accepts reports whether a reply approves the deletion. Only "y" or "Y"
// (surrounding whitespace ignored) approves.
func Accepts(reply string) bool {
	return strings.EqualFold(strings.TrimSpace(reply), "y")
}

// Prompter asks on a line-oriented console. It blocks until a line (or EOF)
// is read.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading answers from in and writing the
// question to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer. EOF is a rejection, not an error.
func (p *Prompter) Confirm(t removal.Target) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "%s\nProceed? (y/n): ", Message(t)); err != nil {
		return false, errors.Wrap(err, errors.ErrInput, "failed to write prompt")
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.InputReadFailed(err)
	}
	if err == io.EOF && line == "" {
		fmt.Fprintln(p.out)
	}
	return Accepts(line), nil
}

// Auto approves every target.
type Auto struct{}

// Confirm implements Confirmer.
func (Auto) Confirm(removal.Target) (bool, error) {
	return true, nil
}

// Manifest approves only targets whose name is listed.
type Manifest struct {
	approved map[string]struct{}
}

// NewManifest creates a Manifest from the approved component names.
func NewManifest(names []string) *Manifest {
	m := &Manifest{approved: make(map[string]struct{}, len(names))}
	for _, n := range names {
		m.approved[n] = struct{}{}
	}
	return m
}

// Confirm implements Confirmer.
func (m *Manifest) Confirm(t removal.Target) (bool, error) {
	_, ok := m.approved[t.Name]
	return ok, nil
}

var (
	_ Confirmer = (*Prompter)(nil)
	_ Confirmer = Auto{}
	_ Confirmer = (*Manifest)(nil)
	_ Confirmer = Func(nil)
)
