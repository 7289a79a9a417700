package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
)

var (
	renderRaw  bool
	renderWait time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render [layout]",
	Short: "Render a layout to HTML",
	Long: `Render deserializes a layout, mounts it into a page skeleton and prints
the resulting HTML document.

The layout defaults to display.layout from the project configuration
(layout.xml if unset). Layouts may be XML, JSON or YAML.

Live widgets such as department and content-stream render empty until
their first refresh. Use --wait to let their schedulers run before the
document is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderRaw, "raw", false, "print compact HTML instead of indenting it")
	renderCmd.Flags().DurationVar(&renderWait, "wait", 0, "time to let refresh schedulers run before printing")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	layout := cfg.Layout
	if len(args) == 1 {
		layout = args[0]
	}

	w, err := loadLayout(newRegistry(cfg), layout)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	doc, root := document(cfg, 0)
	anchor, err := core.Mount(w, root, core.WithParentContext(ctx))
	if err != nil {
		return err
	}
	defer anchor.Teardown()

	if renderWait > 0 {
		select {
		case <-time.After(renderWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var out string
	anchor.Update(func(*html.Node) {
		if renderRaw {
			out = dom.RenderString(doc)
		} else {
			out = dom.Pretty(doc)
		}
	})
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
