// Package cmd provides the CLI commands for compprune.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cdowellmdb/compprune/internal/errors"
)

// Version information - set via ldflags at build time in main.go.
// These are exported so main.go can set them before Execute().
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "compprune",
	Short: "Prune unused components and the dependencies they leave behind",
	Long: `compprune removes component directories (or selected files inside them)
listed in the project's removal configuration, asking before each deletion.
It then runs an unused-dependency detector and removes every flagged
dependency with the package manager.

Individual failures are reported but never stop the run.`,
	// When compprune is called with no subcommand, run both stages (same as "compprune run")
	RunE:          runRoot,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	addPersistentFlags(rootCmd)
	addRunFlags(rootCmd)
}

// addPersistentFlags registers the flags shared by every command.
func addPersistentFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.String("config", "", "Path to the configuration file (default: <project>/scripts/component_config.yml)")
	f.String("project-dir", "", "Project root (default: detected from the working directory)")
	f.BoolP("verbose", "v", false, "Enable debug logging and echo the detector report")
	f.BoolP("yes", "y", false, "Approve every removal target without asking")
	f.Bool("tui", false, "Confirm removal targets in a terminal dialog")
	f.Bool("dry-run", false, "Show what would be removed without changing anything")
	f.Bool("no-optional", false, "Do not retry failed removals from optional dependency groups")
	f.String("output", "text", "Output format: text or json")
}

// addRunFlags registers the stage selection flags of the full run.
func addRunFlags(c *cobra.Command) {
	c.Flags().Bool("skip-components", false, "Skip the component stage")
	c.Flags().Bool("skip-deps", false, "Skip the dependency stage")
}

// runRoot is called when compprune is invoked with no subcommand.
func runRoot(cmd *cobra.Command, args []string) error {
	// Delegate to runRun, which handles the run command logic.
	return runRun(cmd, args)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Set version info here after main.go has set the variables.
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("compprune {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatAny(err))
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}
