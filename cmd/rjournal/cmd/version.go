package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the rjournal CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rjournal version %s\n", version)
		fmt.Fprintln(out, "A trading journal and performance analyzer")
		fmt.Fprintln(out, "https://github.com/rustyeddy/rjournal")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
