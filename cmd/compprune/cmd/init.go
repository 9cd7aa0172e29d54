package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cdowellmdb/compprune/internal/app"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration for the current project",
	Long: `Write a commented sample configuration for the current project.

This command creates:
  - scripts/component_config.yml   Sample configuration (or --config)
  - .compprune/logs/               Log directory, added to .gitignore in git projects

Use --force to overwrite an existing configuration.

Examples:
  compprune init          # Initialize the detected project
  compprune init --force  # Overwrite the existing configuration`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration")
}

// runInit is the main entry point for the init command.
func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	projectDir, err := resolveProjectDir(cmd)
	if err != nil {
		return err
	}

	setup := app.NewSetup(projectDir)
	setup.Force = force
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		setup.ConfigPath = path
	}
	setup.OnProgress = func(status string) {
		cmd.Println(status)
	}

	if force {
		cmd.Println("Initializing compprune (force mode)...")
	} else {
		cmd.Println("Initializing compprune...")
	}

	if _, err := setup.Run(); err != nil {
		return err
	}

	cmd.Println("")
	cmd.Println("compprune initialized successfully!")
	cmd.Println("List the components to remove under components_to_remove, then run 'compprune run'.")
	return nil
}
