// Package depgraph computes dependency-consistent package orderings.
//
// The graph is keyed by package name. Declared dependencies that name no
// scanned package still become nodes - they are external sinks with no
// dependencies of their own - but only scanned packages appear in resolved
// output. Ordering uses Kahn's algorithm with a FIFO queue seeded and fed in
// input order, so identical input always yields the identical order. When no
// order exists, resolution fails with a [CycleError] naming one concrete
// cycle, never just the fact that a cycle exists.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// CycleError reports a dependency cycle. Cycle holds the node sequence with
// the entry node repeated at the end, e.g. [A B C A].
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is a directed dependency graph over package names. An edge p -> q
// means p depends on q. The zero value is not usable; use Build.
type Graph struct {
	order    []string // node insertion order
	internal map[string]bool
	outgoing map[string][]string // package -> its dependencies
	incoming map[string][]string // package -> its dependents
}

// Build constructs the graph from scanned packages in input order. Duplicate
// names keep the first package's edges. Unknown dependency names become
// external sink nodes.
func Build(pkgs []model.Package) *Graph {
	g := &Graph{
		internal: make(map[string]bool, len(pkgs)),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
	nodes := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		if nodes[p.Name] {
			continue
		}
		nodes[p.Name] = true
		g.internal[p.Name] = true
		g.order = append(g.order, p.Name)
	}
	seen := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		for _, dep := range p.Dependencies {
			if dep == p.Name {
				continue
			}
			if !nodes[dep] {
				nodes[dep] = true
				g.order = append(g.order, dep)
			}
			g.outgoing[p.Name] = append(g.outgoing[p.Name], dep)
			g.incoming[dep] = append(g.incoming[dep], p.Name)
		}
	}
	return g
}

// Order returns every scanned package name in dependency order: for each
// declared edge "p depends on q", q precedes p. External dependency names
// participate in the ordering but are omitted from the result. Fails with a
// [CycleError] when the graph has no topological order.
func (g *Graph) Order() ([]string, error) {
	indegree := make(map[string]int, len(g.order))
	for _, name := range g.order {
		indegree[name] = len(g.outgoing[name])
	}

	var queue []string
	for _, name := range g.order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	var ordered []string
	consumed := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		consumed++
		if g.internal[name] {
			ordered = append(ordered, name)
		}
		for _, dependent := range g.incoming[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if consumed < len(g.order) {
		return nil, &CycleError{Cycle: g.findCycle(indegree)}
	}
	return ordered, nil
}

// findCycle locates one concrete cycle among the nodes Kahn could not
// consume, by depth-first search with white/gray/black coloring.
func (g *Graph) findCycle(indegree map[string]int) []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)
	color := make(map[string]int, len(g.order))

	var stack []string
	var cycle []string
	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)
		for _, dep := range g.outgoing[name] {
			switch color[dep] {
			case gray:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						cycle = append(append([]string(nil), stack[i:]...), dep)
						return true
					}
				}
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, name := range g.order {
		if indegree[name] > 0 && color[name] == white {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}

// Nodes returns every node name in insertion order, scanned packages first,
// then external dependency names in first-reference order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// External reports whether name is a dependency no scanned package declares.
func (g *Graph) External(name string) bool {
	return !g.internal[name]
}

// Dependencies returns the direct dependencies of name in declaration order.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.outgoing[name]...)
}

// TransitiveDependencies returns every node reachable from name along
// dependency edges, sorted, excluding name itself.
func (g *Graph) TransitiveDependencies(name string) []string {
	return g.reachable(name, g.outgoing)
}

// TransitiveDependents returns every node that directly or indirectly
// depends on name, sorted, excluding name itself.
func (g *Graph) TransitiveDependents(name string) []string {
	return g.reachable(name, g.incoming)
}

func (g *Graph) reachable(start string, adj map[string][]string) []string {
	visited := map[string]bool{start: true}
	stack := append([]string(nil), adj[start]...)
	var out []string
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true
		out = append(out, name)
		stack = append(stack, adj[name]...)
	}
	sort.Strings(out)
	return out
}

// Resolve orders packages so that every package follows its declared
// dependencies. The input slice is not modified. Duplicate names resolve to
// the first occurrence.
func Resolve(pkgs []model.Package) ([]model.Package, error) {
	names, err := Build(pkgs).Order()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Package, len(pkgs))
	for _, p := range pkgs {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}
	ordered := make([]model.Package, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, byName[name])
	}
	return ordered, nil
}
