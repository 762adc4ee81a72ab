package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfuse/docfuse/internal/version"
)

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver, commit, date := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "docfuse version %s\n", ver)
		fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
