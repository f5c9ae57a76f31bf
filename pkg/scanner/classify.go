package scanner

import (
	"sort"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// GuessPathKind classifies a path that belongs to no package. The heuristics
// are name and extension based and deliberately coarse: the result feeds
// internal-package inference and reporting, nothing load-bearing.
func GuessPathKind(p string) string {
	lower := strings.ToLower(p)

	switch {
	case strings.Contains(lower, "doc") || strings.Contains(lower, "readme"):
		return "docs"
	case strings.Contains(lower, "tool") || strings.Contains(lower, "bin"):
		return "tooling"
	case strings.Contains(lower, "third_party") || strings.Contains(lower, "vendor") || strings.Contains(lower, "external"):
		return "third_party"
	case strings.Contains(lower, "script") || strings.HasSuffix(lower, ".sh") || strings.HasSuffix(lower, ".py") ||
		strings.HasSuffix(lower, ".bat") || strings.HasSuffix(lower, ".cmd") || strings.HasSuffix(lower, ".ps1"):
		return "scripts"
	case hasAnySuffix(lower, ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".bmp"):
		return "assets"
	case hasAnySuffix(lower, ".json", ".xml", ".yml", ".yaml", ".toml", ".ini", ".cfg", ".conf"):
		return "config"
	}
	return "unknown"
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// InferInternalPackages groups unknown paths into internal packages by
// top-level directory. Loose root-level entries collect into a single
// "root_misc" bucket rooted at the repository root. Each bucket's kind is
// the most frequent guessed kind of its members (count desc, then name asc),
// with config and unknown collapsing to misc.
func InferInternalPackages(unknown []model.UnknownPath) []model.InternalPackage {
	buckets := make(map[string][]model.UnknownPath)
	for _, u := range unknown {
		top, rest, _ := strings.Cut(u.Path, "/")
		if rest == "" {
			buckets["root_misc"] = append(buckets["root_misc"], u)
			continue
		}
		buckets[top] = append(buckets[top], u)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []model.InternalPackage
	for _, name := range names {
		members := buckets[name]
		root := name
		if name == "root_misc" {
			root = "."
		}

		paths := make([]string, len(members))
		for i, m := range members {
			paths[i] = m.Path
		}
		groups, ungrouped := AutoGroup(paths)

		out = append(out, model.InternalPackage{
			Name:           name,
			Root:           root,
			Kind:           dominantKind(members),
			Members:        paths,
			Groups:         groups,
			UngroupedFiles: ungrouped,
		})
	}
	return out
}

func dominantKind(members []model.UnknownPath) string {
	counts := make(map[string]int)
	for _, m := range members {
		counts[m.Kind]++
	}
	kind, best := "misc", 0
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if counts[k] > best {
			kind, best = k, counts[k]
		}
	}
	if kind == "config" || kind == "unknown" {
		return "misc"
	}
	return kind
}
