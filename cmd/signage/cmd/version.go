package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/signage/pkg/descriptor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "signage version %s (built %s, layout schema %s)\n",
			Version, BuildTime, descriptor.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
