package model

import (
	"path"
	"strings"
)

// NormalizePath converts p to the canonical repo-relative form: slash
// separated, cleaned, with "" mapped to ".". Backslashes are treated as
// separators so descriptor entries written on Windows normalize the same way.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "" || p == "/" {
		return "."
	}
	return strings.TrimPrefix(p, "./")
}

// IsAncestorOrSelf reports whether root equals dir or is one of its
// ancestors. Both arguments must be normalized repo-relative paths; "." is
// the repository root and contains everything.
func IsAncestorOrSelf(root, dir string) bool {
	if root == "." {
		return true
	}
	return dir == root || strings.HasPrefix(dir, root+"/")
}

// PathDepth returns the number of components in a normalized repo-relative
// path. The repository root "." has depth zero.
func PathDepth(p string) int {
	if p == "." || p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// RelativeTo returns dir expressed relative to root, assuming root contains
// dir. Equal paths yield ".". If root does not contain dir, dir is returned
// unchanged.
func RelativeTo(root, dir string) string {
	if root == "." || root == "" {
		return dir
	}
	if dir == root {
		return "."
	}
	if strings.HasPrefix(dir, root+"/") {
		return dir[len(root)+1:]
	}
	return dir
}
