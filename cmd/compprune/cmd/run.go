package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cdowellmdb/compprune/internal/app"
	"github.com/cdowellmdb/compprune/internal/config"
	"github.com/cdowellmdb/compprune/internal/errors"
	"github.com/cdowellmdb/compprune/internal/logging"
	"github.com/cdowellmdb/compprune/internal/project"
	"github.com/cdowellmdb/compprune/internal/tui"
	"github.com/cdowellmdb/compprune/internal/tui/styles"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Prune components, then remove unused dependencies",
	Long: `Run both stages: prune the components listed in the configuration,
then detect unused dependencies and remove them.

The dependency stage runs whatever happened in the component stage.

Examples:
  compprune run                   # Ask before each deletion
  compprune run --yes             # Approve every target
  compprune run --dry-run         # Show the plan only
  compprune run --output json     # Structured report on stdout
  compprune run --skip-deps       # Components only`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

// stages selects which pipeline stages a command runs.
type stages struct {
	components   bool
	dependencies bool
}

// runRun is the main entry point for the run command.
func runRun(cmd *cobra.Command, args []string) error {
	skipComponents, _ := cmd.Flags().GetBool("skip-components")
	skipDeps, _ := cmd.Flags().GetBool("skip-deps")
	return runPipeline(cmd, stages{components: !skipComponents, dependencies: !skipDeps})
}

// runPipeline loads the project and runs the selected stages.
func runPipeline(cmd *cobra.Command, sel stages) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	yes, _ := cmd.Flags().GetBool("yes")
	useTUI, _ := cmd.Flags().GetBool("tui")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noOptional, _ := cmd.Flags().GetBool("no-optional")
	outputFlag, _ := cmd.Flags().GetString("output")

	format, err := app.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	if yes && useTUI {
		return fmt.Errorf("--yes and --tui cannot be combined")
	}

	projectDir, err := resolveProjectDir(cmd)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig(cmd, projectDir)
	if err != nil {
		return err
	}

	mode := cfg.Confirm.Mode
	switch {
	case yes:
		mode = config.ConfirmModeAuto
	case useTUI:
		mode = config.ConfirmModeTUI
	}

	// Set up cancellation context
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeLog := initLogging(cmd, cfg, projectDir, verbose, mode == config.ConfirmModeTUI)
	defer closeLog()
	logging.Info("compprune starting",
		"version", Version,
		"project", projectDir,
		"config", configPath,
		"confirm", string(mode),
		"dry_run", dryRun,
	)

	// Prompts go to stderr when stdout carries the JSON report.
	promptOut := cmd.OutOrStdout()
	if format == app.OutputFormatJSON {
		promptOut = cmd.ErrOrStderr()
	}

	pipeline := app.NewPipeline(projectDir, cfg)
	pipeline.Options = app.Options{
		DryRun:           dryRun,
		SkipComponents:   !sel.components,
		SkipDependencies: !sel.dependencies,
		NoOptional:       noOptional,
		Verbose:          verbose,
	}
	pipeline.Confirmer = app.NewConfirmer(cfg, mode, cmd.InOrStdin(), promptOut)
	pipeline.Logger = logging.Global()
	pipeline.Out = cmd.ErrOrStderr()
	if format == app.OutputFormatText {
		pipeline.OnProgress = func(status string) {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.MutedTextStyle.Render("› "+status))
		}
	}
	spinnerOut := cmd.ErrOrStderr()
	pipeline.Wait = func(ctx context.Context, label string, fn func(context.Context) (string, error)) (string, error) {
		return tui.RunWithSpinner(ctx, spinnerOut, label, fn)
	}

	report := pipeline.Run(ctx)

	if err := report.Write(cmd.OutOrStdout(), format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if path := logging.Global().LogPath(); path != "" && format == app.OutputFormatText {
		fmt.Fprintln(cmd.ErrOrStderr(), styles.MutedTextStyle.Render("Log: "+path))
	}

	// Per-target and per-dependency failures are in the report, not the exit status.
	return nil
}

// resolveProjectDir returns --project-dir, or the project root above the
// working directory.
func resolveProjectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("project-dir")
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project directory: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", errors.ProjectRootNotFound(abs).WithDetails("project_dir", dir)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	info, err := project.FindRoot(cwd)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// configPathFor returns --config, or the default path under projectDir.
func configPathFor(cmd *cobra.Command, projectDir string) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return filepath.Join(projectDir, filepath.FromSlash(config.DefaultConfigPath))
	}
	return path
}

// loadConfig loads the configuration and converts loader failures into
// errors with suggestions.
func loadConfig(cmd *cobra.Command, projectDir string) (*config.Config, string, error) {
	path := configPathFor(cmd, projectDir)

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}

	var loadErr *config.LoadError
	if stderrors.As(err, &loadErr) && loadErr.NotFound() {
		return nil, path, errors.ConfigNotFound(path)
	}

	var validationErrs config.ValidationErrors
	if stderrors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		var options []string
		if first.Field == "confirm.mode" {
			options = config.ValidConfirmModes
		}
		return nil, path, errors.ConfigValidationError(first.Field, validationErrs.Error(), options)
	}

	return nil, path, errors.ConfigParseError(path, err)
}

// initLogging sets up the global logger and returns its cleanup function.
// Console logging is off while a terminal dialog owns the screen.
func initLogging(cmd *cobra.Command, cfg *config.Config, projectDir string, verbose, dialog bool) func() {
	level := logging.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logging.LevelDebug
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = level
	logConfig.LogDir = cfg.LogDir(projectDir)
	logConfig.JSONFormat = cfg.Log.JSON
	logConfig.Console = !dialog

	if err := logging.InitGlobal(logConfig); err != nil {
		// Non-fatal: warn but continue without file logging
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to initialize logging: %v\n", err)
		logConfig.LogDir = ""
		if err := logging.InitGlobal(logConfig); err != nil {
			return func() {}
		}
	}
	return func() { _ = logging.CloseGlobal() }
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
