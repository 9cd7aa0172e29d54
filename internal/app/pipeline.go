// Package app orchestrates compprune: component pruning followed by
// dependency removal, each stage followed by its hooks.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/cdowellmdb/compprune/internal/config"
	"github.com/cdowellmdb/compprune/internal/confirm"
	"github.com/cdowellmdb/compprune/internal/deps"
	cperrors "github.com/cdowellmdb/compprune/internal/errors"
	"github.com/cdowellmdb/compprune/internal/hooks"
	"github.com/cdowellmdb/compprune/internal/logging"
	"github.com/cdowellmdb/compprune/internal/project"
	"github.com/cdowellmdb/compprune/internal/prune"
	"github.com/cdowellmdb/compprune/internal/removal"
	"github.com/cdowellmdb/compprune/internal/shell"
	"github.com/cdowellmdb/compprune/internal/tui"
	"github.com/cdowellmdb/compprune/internal/usage"
)

// Options select what a run does.
type Options struct {
	// DryRun plans deletions and removals without performing them.
	DryRun bool
	// SkipComponents skips the component stage.
	SkipComponents bool
	// SkipDependencies skips the dependency stage.
	SkipDependencies bool
	// NoOptional disables the optional-group fallback.
	NoOptional bool
	// Verbose echoes the detector report to Out.
	Verbose bool
}

// ProgressFunc is called with progress updates during a run.
type ProgressFunc func(status string)

// WaitFunc runs a long external step, typically behind a spinner.
type WaitFunc func(ctx context.Context, label string, fn func(context.Context) (string, error)) (string, error)

// Pipeline runs both stages against one project.
type Pipeline struct {
	// ProjectDir is the project root. External commands run there.
	ProjectDir string
	Config     *config.Config
	Options    Options

	// Fs is the filesystem the pruner deletes from.
	Fs afero.Fs
	// Runner executes the detector, the package manager and hooks.
	Runner shell.Runner
	// Confirmer approves each removal target. Nil prompts on the console.
	Confirmer confirm.Confirmer
	// Hooks run after each stage (optional).
	Hooks *hooks.Manager
	// Parser extracts unused dependencies from the detector report.
	Parser usage.ReportParser
	// Wait wraps the detector run. Defaults to calling it directly.
	Wait WaitFunc

	Logger *logging.Logger
	// Out receives the verbose detector report.
	Out io.Writer
	// OnProgress is called with status updates.
	OnProgress ProgressFunc
}

// NewPipeline creates a Pipeline wired to the real filesystem, the process
// runner and a console prompt.
func NewPipeline(projectDir string, cfg *config.Config) *Pipeline {
	runner := shell.NewExecRunner()
	return &Pipeline{
		ProjectDir: projectDir,
		Config:     cfg,
		Fs:         afero.NewOsFs(),
		Runner:     runner,
		Confirmer:  confirm.NewPrompter(os.Stdin, os.Stdout),
		Hooks:      hooks.NewManagerFromConfig(&cfg.Hooks, runner),
		Parser:     usage.NewParser(cfg.Detector.Marker),
		Logger:     logging.Global(),
		Out:        os.Stdout,
		OnProgress: func(string) {},
	}
}

// NewConfirmer builds the confirmer selected by mode. The tui mode falls
// back to the console prompt when in is not a terminal.
func NewConfirmer(cfg *config.Config, mode config.ConfirmMode, in io.Reader, out io.Writer) confirm.Confirmer {
	switch mode {
	case config.ConfirmModeAuto:
		return confirm.Auto{}
	case config.ConfirmModeManifest:
		return confirm.NewManifest(cfg.Confirm.Approved)
	case config.ConfirmModeTUI:
		if tui.IsTerminal(in) && tui.IsTerminal(out) {
			return tui.NewDialogConfirmer(in, out)
		}
		logging.Warn("terminal dialog unavailable, falling back to console prompt")
		return confirm.NewPrompter(in, out)
	default:
		return confirm.NewPrompter(in, out)
	}
}

// Run executes the selected stages and returns the aggregated report.
// Individual failures are recorded in the report; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context) *Report {
	report := &Report{
		ProjectDir:     p.ProjectDir,
		ComponentsRoot: p.Config.ComponentsRoot(p.ProjectDir),
		DryRun:         p.Options.DryRun,
		StartTime:      time.Now(),
	}

	if !p.Options.SkipComponents {
		report.Components = p.RunComponents(ctx)
	}
	// The dependency stage runs whatever the component stage did.
	if !p.Options.SkipDependencies {
		report.Dependencies = p.RunDependencies(ctx)
	}

	report.EndTime = time.Now()
	p.logger().Info("run finished", "duration", report.EndTime.Sub(report.StartTime).String())
	return report
}

// RunComponents resolves the removal list, confirms each target and prunes
// the approved ones.
func (p *Pipeline) RunComponents(ctx context.Context) *ComponentStage {
	log := p.logger().Component("components")
	root := p.Config.ComponentsRoot(p.ProjectDir)
	stage := &ComponentStage{Root: root, Results: []prune.Result{}}

	spec := removal.ResolveAll(p.Config.ComponentsToRemove, log)
	if len(spec) == 0 {
		log.Info("no components to remove")
	}

	if ok, err := afero.DirExists(p.Fs, root); err != nil || !ok {
		log.Warn(cperrors.ComponentsRootNotFound(root).Error())
	}

	if !p.Options.DryRun && len(spec) > 0 {
		stage.Uncommitted = p.uncommittedChanges(ctx, root)
		if len(stage.Uncommitted) > 0 {
			log.Warn("components directory has uncommitted changes that cannot be restored from git",
				"count", len(stage.Uncommitted), "paths", stage.Uncommitted)
		}
	}

	pruner := prune.New(p.Fs, root, log)
	pruner.DryRun = p.Options.DryRun

	for _, target := range spec {
		dir := pruner.Dir(target)

		if err := ctx.Err(); err != nil {
			stage.Results = append(stage.Results, prune.Declined(target, dir, "cancelled"))
			continue
		}

		// Dry runs delete nothing, so they are not gated.
		if !p.Options.DryRun {
			approved, err := p.confirmer().Confirm(target)
			if err != nil {
				log.Warn("confirmation failed", "component", target.Name, "error", err)
				stage.Results = append(stage.Results, prune.Declined(target, dir, err.Error()))
				continue
			}
			if !approved {
				log.Info("removal declined", "component", target.Name)
				stage.Results = append(stage.Results, prune.Declined(target, dir, ""))
				continue
			}
		}

		p.report(fmt.Sprintf("Pruning %s", target.Name))
		stage.Results = append(stage.Results, pruner.Prune(target))
	}

	stage.Summary = prune.Summarize(stage.Results)
	log.Info("component stage finished",
		"removed", stage.Summary.Removed,
		"missing", stage.Summary.Missing,
		"declined", stage.Summary.Declined,
		"incomplete", stage.Summary.Incomplete,
		"planned", stage.Summary.Planned,
	)

	stage.Hooks = p.runHooks(ctx, &hooks.HookContext{
		Stage:      hooks.StageComponents,
		ProjectDir: p.ProjectDir,
		DryRun:     p.Options.DryRun,
		Removed:    stage.Summary.Removed,
		Failed:     stage.Summary.Incomplete,
	})
	return stage
}

// RunDependencies runs the detector, parses its report and removes every
// flagged dependency.
func (p *Pipeline) RunDependencies(ctx context.Context) *DependencyStage {
	log := p.logger().Component("dependencies")
	stage := &DependencyStage{Unused: []string{}, Outcomes: []deps.Outcome{}}

	if p.Config.Detector.Skip {
		log.Info("dependency stage disabled by configuration")
		stage.Skipped = true
		return stage
	}

	detector := &usage.Detector{
		Runner:  p.Runner,
		Dir:     p.ProjectDir,
		Command: p.Config.Detector.Command,
		Timeout: p.Config.Detector.Timeout,
		Logger:  log,
	}

	label := "Running " + strings.Join(p.Config.Detector.Command, " ")
	p.report(label)
	report, err := p.wait()(ctx, label, detector.Run)
	if err != nil {
		log.Error("detector failed", "error", err)
		stage.Error = err.Error()
		return stage
	}

	if p.Options.Verbose && p.Out != nil {
		fmt.Fprintln(p.Out, report)
	}

	stage.Unused = p.parser().Parse(report)
	log.Info("unused dependencies found", "count", len(stage.Unused), "dependencies", stage.Unused)

	if p.Config.PackageManager.Skip {
		log.Info("dependency removal disabled by configuration")
	} else if len(stage.Unused) > 0 {
		remover := &deps.Remover{
			Runner:  p.Runner,
			Dir:     p.ProjectDir,
			Command: p.Config.PackageManager.Command,
			Timeout: p.Config.PackageManager.Timeout,
			DryRun:  p.Options.DryRun,
			Logger:  log,
		}
		allowOptional := p.Config.PackageManager.RemoveOptional && !p.Options.NoOptional

		p.report(fmt.Sprintf("Removing %d dependencies", len(stage.Unused)))
		stage.Outcomes = remover.RemoveAll(ctx, stage.Unused, allowOptional)
	}

	stage.Summary = deps.Summarize(stage.Outcomes)
	log.Info("dependency stage finished",
		"removed", stage.Summary.Removed,
		"removed_optional", stage.Summary.RemovedOptional,
		"failed", stage.Summary.Failed,
		"planned", stage.Summary.Planned,
	)

	stage.Hooks = p.runHooks(ctx, &hooks.HookContext{
		Stage:      hooks.StageDependencies,
		ProjectDir: p.ProjectDir,
		DryRun:     p.Options.DryRun,
		Removed:    stage.Summary.Removed,
		Failed:     stage.Summary.Failed,
	})
	return stage
}

// uncommittedChanges lists changed paths below root in git projects.
func (p *Pipeline) uncommittedChanges(ctx context.Context, root string) []string {
	info, err := project.NewDetector().DetectProject(p.ProjectDir)
	if err != nil || info == nil || !info.IsGitRepo {
		return nil
	}

	rel, err := filepath.Rel(p.ProjectDir, root)
	if err != nil {
		return nil
	}
	changes, err := project.NewGit(p.ProjectDir, p.Runner).UncommittedChanges(ctx, filepath.ToSlash(rel))
	if err != nil {
		p.logger().Debug("cannot inspect git status", "error", err)
		return nil
	}
	return changes
}

func (p *Pipeline) runHooks(ctx context.Context, hookCtx *hooks.HookContext) []*hooks.HookResult {
	if p.Hooks == nil || !p.Hooks.HasHooks(hookCtx.Stage) {
		return nil
	}

	log := p.logger().Component("hooks")
	p.Hooks.Logger = func(h hooks.Hook, r *hooks.HookResult) {
		if r.IsSuccess() {
			log.Info("hook finished", "hook", h.Name(), "stage", h.Stage().String())
			return
		}
		log.Warn("hook failed", "hook", h.Name(), "stage", h.Stage().String(), "exit_code", r.ExitCode, "error", r.Error, "output", r.Output)
	}

	p.report(fmt.Sprintf("Running %s hooks", hookCtx.Stage))
	res := p.Hooks.Run(ctx, hookCtx)
	if res.Cancelled {
		log.Warn("hooks cancelled", "stage", hookCtx.Stage.String())
	}
	return res.Results
}

func (p *Pipeline) confirmer() confirm.Confirmer {
	if p.Confirmer == nil {
		p.Confirmer = confirm.NewPrompter(os.Stdin, os.Stdout)
	}
	return p.Confirmer
}

func (p *Pipeline) parser() usage.ReportParser {
	if p.Parser == nil {
		return usage.NewParser(p.Config.Detector.Marker)
	}
	return p.Parser
}

func (p *Pipeline) wait() WaitFunc {
	if p.Wait == nil {
		return func(ctx context.Context, _ string, fn func(context.Context) (string, error)) (string, error) {
			return fn(ctx)
		}
	}
	return p.Wait
}

func (p *Pipeline) logger() *logging.Logger {
	if p.Logger == nil {
		return logging.NewNoop()
	}
	return p.Logger
}

func (p *Pipeline) report(status string) {
	if p.OnProgress != nil {
		p.OnProgress(status)
	}
}
