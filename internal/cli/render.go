package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/depgraph"
	"github.com/repoatlas/repoatlas/pkg/render/nodelink"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts scanOpts
	var modelPath, format, output string
	var includeExternal bool

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Render the package dependency graph",
		Long: `Render the dependency graph of scanned packages as Graphviz DOT or SVG.

Examples:
  repoatlas render . -o deps.svg
  repoatlas render --format dot --model atlas.json -o deps.dot
  repoatlas render --external .      # include external dependencies`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.modelFromArgs(cmd, args, modelPath, opts)
			if err != nil {
				return err
			}

			dot := nodelink.ToDOT(depgraph.Build(m.Packages), nodelink.Options{
				IncludeExternal: includeExternal,
			})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				spin := newSpinner(cmd.Context(), "Rendering graph...")
				spin.Start()
				data, err = nodelink.RenderSVG(cmd.Context(), dot)
				spin.Stop()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}

			if output == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s dependency graph", m.RepoName)
			printFile(output)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&modelPath, "model", "", "read the model from a JSON export instead of scanning")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&includeExternal, "external", false, "include external dependencies")
	return cmd
}
