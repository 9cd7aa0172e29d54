// Package deps removes unused dependencies through the package manager,
// retrying as an optional-group removal when the package manager says so.
package deps

import (
	"context"
	"regexp"
	"time"

	"github.com/cdowellmdb/compprune/internal/logging"
	"github.com/cdowellmdb/compprune/internal/shell"
)

// State tracks one dependency through removal.
type State string

const (
	// StatePending means no removal has been attempted yet.
	StatePending State = "pending"
	// StatePrimaryAttempted follows the plain removal attempt.
	StatePrimaryAttempted State = "primary_attempted"
	// StateOptionalAttempted follows the optional-group retry.
	StateOptionalAttempted State = "optional_attempted"
	// StateDone means one of the attempts succeeded.
	StateDone State = "done"
	// StateFailed means every permitted attempt failed.
	StateFailed State = "failed"
	// StatePlanned is the terminal state of a dry run.
	StatePlanned State = "planned"
)

// Terminal reports whether no further attempts will be made.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StatePlanned
}

// optionalHint matches the package manager's suggestion to retry against an
// optional dependency group, e.g. "try calling `uv remove --optional aws`".
var optionalHint = regexp.MustCompile("try calling `\\S+ remove --optional ([^\\s`]+)`")

// OptionalGroup extracts the suggested optional group from the package
// manager's stderr. It returns "" when there is no suggestion.
func OptionalGroup(stderr string) string {
	m := optionalHint.FindStringSubmatch(stderr)
	if m == nil {
		return ""
	}
	return m[1]
}

// Attempt records one package manager invocation.
type Attempt struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	// Error is set when the process could not be run at all.
	Error string `json:"error,omitempty"`
	// Skipped is set for dry runs.
	Skipped bool `json:"skipped,omitempty"`
}

// Succeeded reports whether the invocation exited zero.
func (a Attempt) Succeeded() bool {
	return !a.Skipped && a.Error == "" && a.ExitCode == 0
}

// Outcome is the per-dependency result of removal.
type Outcome struct {
	Dependency       string `json:"dependency"`
	State            State  `json:"state"`
	PrimarySucceeded bool   `json:"primary_succeeded"`
	// OptionalGroup is the group suggested by the package manager, if any.
	OptionalGroup string `json:"optional_group,omitempty"`
	// OptionalAttempted is false when no optional retry was made.
	OptionalAttempted bool      `json:"optional_attempted"`
	OptionalSucceeded bool      `json:"optional_succeeded"`
	Attempts          []Attempt `json:"attempts"`
}

// Removed reports whether the dependency is gone from the project.
func (o Outcome) Removed() bool {
	return o.State == StateDone
}

// Remover drives the package manager.
type Remover struct {
	Runner shell.Runner
	// Dir is the project root the package manager runs in.
	Dir string
	// Command is the package manager executable plus leading arguments.
	Command []string
	// Timeout bounds each invocation. Zero means no timeout.
	Timeout time.Duration
	// DryRun records planned commands without running them.
	DryRun bool
	Logger *logging.Logger
}

// RemoveAll removes every dependency in order. A failure never stops the
// batch; once ctx is cancelled the remaining dependencies are marked failed
// without being attempted.
func (r *Remover) RemoveAll(ctx context.Context, deps []string, allowOptional bool) []Outcome {
	outcomes := make([]Outcome, 0, len(deps))
	for _, dep := range deps {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{
				Dependency: dep,
				State:      StateFailed,
				Attempts:   []Attempt{{Command: r.command("remove", dep).String(), ExitCode: -1, Error: err.Error()}},
			})
			continue
		}
		outcomes = append(outcomes, r.Remove(ctx, dep, allowOptional))
	}
	return outcomes
}

// Remove runs the removal state machine for a single dependency.
func (r *Remover) Remove(ctx context.Context, dep string, allowOptional bool) Outcome {
	log := r.logger().With("dependency", dep)
	out := Outcome{Dependency: dep, State: StatePending}

	primary := r.attempt(ctx, r.command("remove", dep))
	out.Attempts = append(out.Attempts, primary)
	out.State = StatePrimaryAttempted

	if primary.Skipped {
		log.Info("would remove dependency", "command", primary.Command)
		out.State = StatePlanned
		return out
	}

	if primary.Succeeded() {
		out.PrimarySucceeded = true
		out.State = StateDone
		log.Info("removed dependency")
		return out
	}

	if !allowOptional {
		out.State = StateFailed
		log.Warn("failed to remove dependency", "exit_code", primary.ExitCode, "stderr", primary.Stderr, "error", primary.Error)
		return out
	}

	group := OptionalGroup(primary.Stderr)
	if group == "" {
		out.State = StateFailed
		log.Warn("failed to remove dependency", "exit_code", primary.ExitCode, "stderr", primary.Stderr, "error", primary.Error)
		return out
	}

	out.OptionalGroup = group
	log.Info("retrying as optional dependency", "group", group)

	optional := r.attempt(ctx, r.command("remove", dep, "--optional", group))
	out.Attempts = append(out.Attempts, optional)
	out.OptionalAttempted = true
	out.State = StateOptionalAttempted

	if optional.Succeeded() {
		out.OptionalSucceeded = true
		out.State = StateDone
		log.Info("removed optional dependency", "group", group)
		return out
	}

	out.State = StateFailed
	log.Warn("failed to remove optional dependency", "group", group, "exit_code", optional.ExitCode, "stderr", optional.Stderr, "error", optional.Error)
	return out
}

func (r *Remover) attempt(ctx context.Context, cmd shell.Command) Attempt {
	a := Attempt{Command: cmd.String()}
	if r.DryRun {
		a.Skipped = true
		return a
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.logger().Debug("running package manager", "command", a.Command)
	res, err := r.Runner.Run(ctx, cmd)
	if res != nil {
		a.ExitCode = res.ExitCode
		a.Stdout = res.Stdout
		a.Stderr = res.Stderr
	}
	if err != nil {
		a.Error = err.Error()
		if a.ExitCode == 0 {
			a.ExitCode = -1
		}
	}
	return a
}

func (r *Remover) command(args ...string) shell.Command {
	pm := r.Command
	if len(pm) == 0 {
		pm = []string{"uv"}
	}
	full := append(append([]string{}, pm[1:]...), args...)
	return shell.Command{Name: pm[0], Args: full, Dir: r.Dir}
}

func (r *Remover) logger() *logging.Logger {
	if r.Logger == nil {
		return logging.NewNoop()
	}
	return r.Logger
}

// Summary counts outcomes by result.
type Summary struct {
	Total           int `json:"total"`
	Removed         int `json:"removed"`
	RemovedOptional int `json:"removed_optional"`
	Failed          int `json:"failed"`
	Planned         int `json:"planned"`
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.State {
		case StateDone:
			s.Removed++
			if o.OptionalSucceeded {
				s.RemovedOptional++
			}
		case StatePlanned:
			s.Planned++
		default:
			s.Failed++
		}
	}
	return s
}
