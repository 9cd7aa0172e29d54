package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/cdowellmdb/compprune/internal/shell"
)

// Git inspects the project's working tree.
type Git struct {
	// Runner executes git. Defaults to shell.NewExecRunner().
	Runner shell.Runner
	// WorkDir is the project root.
	WorkDir string
}

// NewGit creates a Git for the project at workDir.
func NewGit(workDir string, runner shell.Runner) *Git {
	if runner == nil {
		runner = shell.NewExecRunner()
	}
	return &Git{Runner: runner, WorkDir: workDir}
}

// UncommittedChanges lists paths under the given pathspecs that have staged,
// unstaged or untracked changes, as reported by git status --porcelain.
func (g *Git) UncommittedChanges(ctx context.Context, pathspecs ...string) ([]string, error) {
	args := []string{"status", "--porcelain"}
	if len(pathspecs) > 0 {
		args = append(append(args, "--"), pathspecs...)
	}

	res, err := g.Runner.Run(ctx, shell.Command{Name: "git", Args: args, Dir: g.WorkDir})
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("git status failed: exit status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	changes := []string{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		// Porcelain lines are "XY path".
		if len(line) < 4 {
			continue
		}
		changes = append(changes, strings.TrimSpace(line[3:]))
	}
	return changes, nil
}
