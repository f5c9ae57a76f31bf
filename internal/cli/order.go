package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/depgraph"
	pkgio "github.com/repoatlas/repoatlas/pkg/io"
	"github.com/repoatlas/repoatlas/pkg/model"
)

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var opts scanOpts
	var modelPath string
	var deps, dependents string

	cmd := &cobra.Command{
		Use:   "order [path]",
		Short: "Compute a dependency order over scanned packages",
		Long: `Compute a build order: every package is printed after all of its declared
dependencies. Dependencies no scanned package provides are treated as
external and omitted.

Examples:
  repoatlas order .                     # scan, then order
  repoatlas order --model atlas.json    # order a previously exported model
  repoatlas order --deps Core .         # what Core pulls in, transitively
  repoatlas order --dependents Core .   # what breaks if Core changes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.modelFromArgs(cmd, args, modelPath, opts)
			if err != nil {
				return err
			}
			g := depgraph.Build(m.Packages)

			switch {
			case deps != "":
				return printReachable(deps, g.TransitiveDependencies(deps))
			case dependents != "":
				return printReachable(dependents, g.TransitiveDependents(dependents))
			}

			order, err := g.Order()
			if err != nil {
				var cycle *depgraph.CycleError
				if errors.As(err, &cycle) {
					printError("Dependency cycle: %s", strings.Join(cycle.Cycle, " "+iconArrow+" "))
					return err
				}
				return err
			}
			for _, name := range order {
				fmt.Println(name)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&modelPath, "model", "", "read the model from a JSON export instead of scanning")
	cmd.Flags().StringVar(&deps, "deps", "", "print the transitive dependencies of a package")
	cmd.Flags().StringVar(&dependents, "dependents", "", "print the transitive dependents of a package")
	cmd.MarkFlagsMutuallyExclusive("deps", "dependents")
	return cmd
}

// modelFromArgs loads the model from --model when given, otherwise scans the
// path argument (default ".").
func (c *CLI) modelFromArgs(cmd *cobra.Command, args []string, modelPath string, opts scanOpts) (*model.Model, error) {
	if modelPath != "" {
		dec, err := pkgio.ImportJSON(modelPath)
		if err != nil {
			return nil, err
		}
		return dec.Model, nil
	}
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	m, _, err := c.resolveModel(cmd.Context(), root, opts)
	return m, err
}

func printReachable(name string, reachable []string) error {
	if len(reachable) == 0 {
		printInfo("%s reaches nothing", name)
		return nil
	}
	for _, n := range reachable {
		fmt.Println(n)
	}
	return nil
}
