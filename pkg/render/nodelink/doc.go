// Package nodelink renders package dependency graphs as node-link diagrams.
//
// [ToDOT] produces deterministic Graphviz DOT source from a dependency
// graph; [RenderSVG] rasterizes it in-process via go-graphviz:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Scanned packages render as solid rounded boxes; external dependencies
// (opt-in via Options.IncludeExternal) as dashed grey ones. DOT output for
// an unchanged scan is byte-identical, so it can be committed and diffed.
package nodelink
