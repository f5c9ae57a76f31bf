package scanner

import (
	"os"
	"path"
	"path/filepath"
)

// dirNode is one directory in the materialized index. Children and Files are
// name-sorted, so walking nodes in slice order is a deterministic pre-order
// traversal of the tree.
type dirNode struct {
	Path     string // repo-relative, "." for the root
	Parent   int    // index into Index.nodes, -1 for the root
	Children []int
	Files    []string // file names, not paths
}

// Index is a materialized snapshot of the repository's directory tree with
// the skip list already applied. Both scanner passes and the extractors run
// against the index, so pruning decisions never re-stat the filesystem.
type Index struct {
	Root   string // absolute repository root
	nodes  []dirNode
	byPath map[string]int
}

// BuildIndex reads the tree under repoRoot. Directories whose name is in
// skip, or starts with a dot, are not descended into. Only the root being
// unreadable is an error; unreadable subdirectories are treated as empty.
func BuildIndex(repoRoot string, skip map[string]bool) (*Index, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, err
	}
	if _, err := os.ReadDir(absRoot); err != nil {
		return nil, err
	}

	idx := &Index{Root: absRoot, byPath: make(map[string]int)}
	idx.addDir(".", -1, skip)
	return idx, nil
}

func (idx *Index) addDir(rel string, parent int, skip map[string]bool) int {
	i := len(idx.nodes)
	idx.nodes = append(idx.nodes, dirNode{Path: rel, Parent: parent})
	idx.byPath[rel] = i

	entries, err := os.ReadDir(idx.Abs(rel))
	if err != nil {
		return i
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if name[0] == '.' || skip[name] {
				continue
			}
			child := idx.addDir(path.Join(rel, name), i, skip)
			idx.nodes[i].Children = append(idx.nodes[i].Children, child)
			continue
		}
		idx.nodes[i].Files = append(idx.nodes[i].Files, name)
	}
	return i
}

// Abs converts a repo-relative path to an absolute one.
func (idx *Index) Abs(rel string) string {
	if rel == "." {
		return idx.Root
	}
	return filepath.Join(idx.Root, filepath.FromSlash(rel))
}

// Lookup returns the node index for a repo-relative directory path.
func (idx *Index) Lookup(rel string) (int, bool) {
	i, ok := idx.byPath[rel]
	return i, ok
}

// Dirs returns all directory paths in pre-order.
func (idx *Index) Dirs() []string {
	out := make([]string, len(idx.nodes))
	for i, n := range idx.nodes {
		out[i] = n.Path
	}
	return out
}

// FilesUnder returns every file in the subtree rooted at rel, as paths
// relative to rel, in pre-order.
func (idx *Index) FilesUnder(rel string) []string {
	start, ok := idx.byPath[rel]
	if !ok {
		return nil
	}
	var out []string
	var visit func(i int)
	visit = func(i int) {
		n := idx.nodes[i]
		for _, f := range n.Files {
			p := path.Join(n.Path, f)
			if rel != "." {
				p = p[len(rel)+1:]
			}
			out = append(out, p)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(start)
	return out
}
