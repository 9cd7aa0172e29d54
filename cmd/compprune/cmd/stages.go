package cmd

import (
	"github.com/spf13/cobra"
)

// componentsCmd runs only the component stage.
var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Prune the configured components only",
	Long: `Delete the component directories, or the selected files inside them,
listed under components_to_remove. Each target is confirmed first unless
--yes is given or confirm.mode says otherwise.

Examples:
  compprune components            # Ask before each deletion
  compprune components --dry-run  # List what would be deleted
  compprune components --tui      # Confirm in a terminal dialog`,
	RunE: runComponents,
}

// depsCmd runs only the dependency stage.
var depsCmd = &cobra.Command{
	Use:     "deps",
	Aliases: []string{"dependencies"},
	Short:   "Remove unused dependencies only",
	Long: `Run the unused-dependency detector and remove every dependency it flags.
A removal the package manager rejects is retried from the optional group it
suggests, unless --no-optional is given.

Examples:
  compprune deps                  # Detect and remove
  compprune deps --dry-run -v     # Show the detector report and the plan`,
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
	rootCmd.AddCommand(depsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, stages{components: true})
}

func runDeps(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, stages{dependencies: true})
}
