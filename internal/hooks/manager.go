package hooks

import (
	"context"
	"fmt"

	"github.com/cdowellmdb/compprune/internal/config"
	"github.com/cdowellmdb/compprune/internal/shell"
)

// ManagerResult represents the aggregate outcome of running a stage's hooks.
type ManagerResult struct {
	// AllSuccess is true if all hooks succeeded.
	AllSuccess bool
	// Results contains the individual result for each hook that ran.
	Results []*HookResult
	// Cancelled is true if the context was cancelled before every hook ran.
	Cancelled bool
}

// Manager runs the hooks configured for each stage, in order.
type Manager struct {
	componentHooks  []Hook
	dependencyHooks []Hook
	// Logger is called for each hook execution (optional).
	Logger func(hook Hook, result *HookResult)
}

// NewManager creates a new hook manager with the given hooks.
func NewManager(componentHooks, dependencyHooks []Hook) *Manager {
	return &Manager{
		componentHooks:  componentHooks,
		dependencyHooks: dependencyHooks,
	}
}

// NewManagerFromConfig creates a Manager with shell hooks from configuration.
func NewManagerFromConfig(cfg *config.HooksConfig, runner shell.Runner) *Manager {
	return NewManager(CreateHooksFromConfig(cfg, runner))
}

// Hooks returns the hooks that follow the given stage.
func (m *Manager) Hooks(stage Stage) []Hook {
	switch stage {
	case StageComponents:
		return m.componentHooks
	case StageDependencies:
		return m.dependencyHooks
	default:
		return nil
	}
}

// HasHooks returns true if any hook follows the given stage.
func (m *Manager) HasHooks(stage Stage) bool {
	return len(m.Hooks(stage)) > 0
}

// Run executes the hooks for hookCtx.Stage in order. A failing hook is
// recorded and the next one still runs; only cancellation stops the list.
func (m *Manager) Run(ctx context.Context, hookCtx *HookContext) *ManagerResult {
	hooks := m.Hooks(hookCtx.Stage)
	result := &ManagerResult{
		AllSuccess: true,
		Results:    make([]*HookResult, 0, len(hooks)),
	}

	for _, hook := range hooks {
		if ctx.Err() != nil {
			result.AllSuccess = false
			result.Cancelled = true
			break
		}

		hookResult, err := hook.Execute(ctx, hookCtx)
		if err != nil {
			hookResult = &HookResult{
				Name:     hook.Name(),
				Stage:    hook.Stage(),
				Success:  false,
				Error:    fmt.Sprintf("execution error: %v", err),
				ExitCode: 1,
			}
		}

		result.Results = append(result.Results, hookResult)

		if m.Logger != nil {
			m.Logger(hook, hookResult)
		}

		if !hookResult.IsSuccess() {
			result.AllSuccess = false
		}
	}

	return result
}
