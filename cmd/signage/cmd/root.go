// Package cmd implements the signage CLI commands.
//
// The root command carries the flags shared by every subcommand (render,
// serve, kinds, version).
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/signage/cmd/signage/internal/config"
	"github.com/go-drift/signage/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

var (
	projectDir string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "signage",
	Short: "signage - composable widgets for information displays",
	Long: `Signage builds information displays from declarative layouts. A layout
names widgets (groups, clocks, captions, live department and content
feeds) that are rendered to HTML and refreshed in place while the
display is running.

Use "signage <command> --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		errors.SetHandler(&errors.LogHandler{Verbose: verbose})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "project directory holding signage.yaml or signage.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log errors with stack traces")
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func resolveConfig() (*config.Resolved, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	return config.Resolve(dir)
}
