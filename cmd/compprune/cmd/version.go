package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/cdowellmdb/compprune/internal/app"
	"github.com/cdowellmdb/compprune/internal/version"
)

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show detailed version information for compprune.

Displays the current version, commit hash, build date,
and Go/platform information.

Examples:
  compprune version                # Show detailed version info
  compprune version --output json  # Machine-readable`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// runVersion handles the version command.
func runVersion(cmd *cobra.Command, args []string) error {
	info := version.NewInfo(Version, Commit, Date)

	outputFlag, _ := cmd.Flags().GetString("output")
	format, err := app.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}

	if format == app.OutputFormatJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}

	cmd.Println(info.FullString())
	return nil
}
