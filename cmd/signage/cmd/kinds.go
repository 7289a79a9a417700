package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-drift/signage/pkg/widgets"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the widget kinds layouts may use",
	Long: `Kinds lists the widget kinds understood by the layout registry, followed
by the item types accepted in content streams.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Layout kinds:")
		for _, kind := range widgets.NewRegistry(widgets.Env{}).Kinds() {
			fmt.Fprintf(out, "  %s\n", kind)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Content types:\n  %s\n", strings.Join(widgets.ContentTypes(), "\n  "))
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
