package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version はビルド時に -ldflags "-X btc_backend/cmd/btcdata/cmd.version=..." で上書きします。
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the btcdata CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "btcdata version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
