package nodelink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/repoatlas/repoatlas/pkg/depgraph"
)

// Options configures dependency-graph rendering.
type Options struct {
	// IncludeExternal draws dependency names no scanned package declares.
	// They get dashed grey boxes to stand apart from scanned packages.
	IncludeExternal bool
}

// ToDOT renders the dependency graph as Graphviz DOT. Output is
// deterministic: nodes in graph insertion order, edges in declaration order.
// Edges point from a package to its dependency.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, name := range g.Nodes() {
		if g.External(name) {
			if !opts.IncludeExternal {
				continue
			}
			fmt.Fprintf(&buf, "  %q [style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", name)
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", name)
	}

	buf.WriteString("\n")
	for _, name := range g.Nodes() {
		for _, dep := range g.Dependencies(name) {
			if !opts.IncludeExternal && g.External(dep) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
