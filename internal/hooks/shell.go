package hooks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cdowellmdb/compprune/internal/config"
	"github.com/cdowellmdb/compprune/internal/shell"
)

// ShellHook executes a shell command as a hook.
// Stage details are passed as COMPPRUNE_* environment variables and can be
// referenced in the command as ${STAGE}, ${PROJECT_DIR} and so on.
type ShellHook struct {
	BaseHook
	runner shell.Runner
}

// NewShellHook creates a new shell hook with the given parameters.
func NewShellHook(name string, stage Stage, def config.HookDefinition, runner shell.Runner) *ShellHook {
	if runner == nil {
		runner = shell.NewExecRunner()
	}
	return &ShellHook{
		BaseHook: NewBaseHook(name, stage, def),
		runner:   runner,
	}
}

// Execute runs the shell command with the hook context.
// A non-zero exit is reported in the result, not as an error.
func (h *ShellHook) Execute(ctx context.Context, hookCtx *HookContext) (*HookResult, error) {
	if hookCtx == nil {
		return nil, fmt.Errorf("hook context is required")
	}

	command := h.definition.Command
	if command == "" {
		return nil, fmt.Errorf("shell hook command is empty")
	}

	command = expandVars(command, hookCtx)

	res, err := h.runner.Run(ctx, shell.Command{
		Name: "sh",
		Args: []string{"-c", command},
		Dir:  hookCtx.ProjectDir,
		Env:  buildEnv(hookCtx),
	})

	output := ""
	exitCode := 1
	if res != nil {
		output = strings.TrimSpace(res.Combined)
		exitCode = res.ExitCode
	}

	if err != nil {
		return h.CreateHookResult(false, output, err.Error(), exitCode), nil
	}
	if exitCode != 0 {
		return h.CreateHookResult(false, output, fmt.Sprintf("exit status %d", exitCode), exitCode), nil
	}
	return h.CreateHookResult(true, output, "", 0), nil
}

func hookVars(hookCtx *HookContext) map[string]string {
	return map[string]string{
		"STAGE":       hookCtx.Stage.String(),
		"PROJECT_DIR": hookCtx.ProjectDir,
		"DRY_RUN":     strconv.FormatBool(hookCtx.DryRun),
		"REMOVED":     strconv.Itoa(hookCtx.Removed),
		"FAILED":      strconv.Itoa(hookCtx.Failed),
	}
}

// buildEnv returns the COMPPRUNE_* variables added to the hook environment.
func buildEnv(hookCtx *HookContext) []string {
	vars := hookVars(hookCtx)
	env := make([]string, 0, len(vars))
	for key, value := range vars {
		env = append(env, fmt.Sprintf("COMPPRUNE_%s=%s", key, value))
	}
	return env
}

// expandVars expands ${VAR} patterns in the command string using the hook context.
func expandVars(command string, hookCtx *HookContext) string {
	result := command
	for key, value := range hookVars(hookCtx) {
		result = strings.ReplaceAll(result, "${"+key+"}", value)
	}
	return result
}
