// Package hooks runs user-configured shell commands after each pruning stage.
// Hooks report failures but never stop the pipeline.
package hooks

import (
	"context"
	"fmt"

	"github.com/cdowellmdb/compprune/internal/config"
	"github.com/cdowellmdb/compprune/internal/shell"
)

// Stage identifies the pipeline stage a hook follows.
type Stage string

const (
	// StageComponents is the component pruning stage.
	StageComponents Stage = "components"
	// StageDependencies is the dependency removal stage.
	StageDependencies Stage = "dependencies"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is known.
func (s Stage) IsValid() bool {
	return s == StageComponents || s == StageDependencies
}

// HookContext provides context information for hook execution.
type HookContext struct {
	// Stage is the stage that just finished.
	Stage Stage
	// ProjectDir is the project root directory. Hooks run there.
	ProjectDir string
	// DryRun is set when the stage made no changes.
	DryRun bool
	// Removed is how many targets or dependencies the stage removed.
	Removed int
	// Failed is how many targets or dependencies the stage failed on.
	Failed int
}

// HookResult represents the outcome of a hook execution.
type HookResult struct {
	// Name is the hook's name.
	Name string `json:"name"`
	// Stage is the stage the hook followed.
	Stage Stage `json:"stage"`
	// Success indicates whether the hook completed successfully.
	Success bool `json:"success"`
	// Output is the captured output from the hook.
	Output string `json:"output,omitempty"`
	// Error contains any error message if the hook failed.
	Error string `json:"error,omitempty"`
	// ExitCode is the command's exit code (0 = success).
	ExitCode int `json:"exit_code"`
}

// IsSuccess returns true if the hook executed successfully.
func (r HookResult) IsSuccess() bool {
	return r.Success && r.ExitCode == 0
}

// Hook defines the interface that all hook implementations must satisfy.
type Hook interface {
	// Name returns a descriptive name for this hook (for logging).
	Name() string

	// Stage returns the stage this hook follows.
	Stage() Stage

	// Definition returns the underlying hook definition from config.
	Definition() config.HookDefinition

	// Execute runs the hook with the given context.
	Execute(ctx context.Context, hookCtx *HookContext) (*HookResult, error)
}

// BaseHook provides common functionality for hook implementations.
type BaseHook struct {
	name       string
	stage      Stage
	definition config.HookDefinition
}

// NewBaseHook creates a new BaseHook with the given parameters.
func NewBaseHook(name string, stage Stage, def config.HookDefinition) BaseHook {
	return BaseHook{
		name:       name,
		stage:      stage,
		definition: def,
	}
}

// Name returns the hook name.
func (h *BaseHook) Name() string {
	return h.name
}

// Stage returns the stage this hook follows.
func (h *BaseHook) Stage() Stage {
	return h.stage
}

// Definition returns the hook definition.
func (h *BaseHook) Definition() config.HookDefinition {
	return h.definition
}

// CreateHookResult creates a HookResult labelled with this hook.
func (h *BaseHook) CreateHookResult(success bool, output, errMsg string, exitCode int) *HookResult {
	return &HookResult{
		Name:     h.name,
		Stage:    h.stage,
		Success:  success,
		Output:   output,
		Error:    errMsg,
		ExitCode: exitCode,
	}
}

// CreateHooksFromConfig creates shell hooks for both stages.
func CreateHooksFromConfig(cfg *config.HooksConfig, runner shell.Runner) (componentHooks, dependencyHooks []Hook) {
	componentHooks = make([]Hook, 0, len(cfg.PostComponents))
	dependencyHooks = make([]Hook, 0, len(cfg.PostDependencies))

	for i, def := range cfg.PostComponents {
		componentHooks = append(componentHooks, NewShellHook(hookName("post_components", i, def), StageComponents, def, runner))
	}
	for i, def := range cfg.PostDependencies {
		dependencyHooks = append(dependencyHooks, NewShellHook(hookName("post_dependencies", i, def), StageDependencies, def, runner))
	}

	return componentHooks, dependencyHooks
}

func hookName(list string, index int, def config.HookDefinition) string {
	if def.Name != "" {
		return def.Name
	}
	return fmt.Sprintf("%s[%d]", list, index)
}
