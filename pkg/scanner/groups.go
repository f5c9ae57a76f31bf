package scanner

import (
	"path"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/descriptor"
	"github.com/repoatlas/repoatlas/pkg/model"
)

// autoGroupDefs maps presentation group names to the extensions they claim,
// in emission order.
var autoGroupDefs = []struct {
	name string
	exts map[string]bool
}{
	{"sources", extSet(".c", ".cc", ".cpp", ".cxx", ".icpp", ".cppi")},
	{"headers", extSet(".h", ".hpp", ".hxx", ".inl")},
	{"docs", extSet(".md", ".rst", ".txt", ".qtf")},
	{"scripts", extSet(".sh", ".bat", ".cmd", ".ps1", ".py", ".pl")},
	{"assets", extSet(".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".bmp")},
	{"config", extSet(".json", ".xml", ".yml", ".yaml", ".toml", ".ini", ".cfg", ".conf")},
}

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// AutoGroup partitions files into presentation-only groups by extension.
// Files claimed by no group are returned as the ungrouped remainder. Groups
// are marked auto-generated to distinguish them from declared ones.
func AutoGroup(files []string) ([]model.FileGroup, []string) {
	byName := make(map[string][]string)
	var ungrouped []string

	for _, f := range files {
		ext := strings.ToLower(path.Ext(f))
		grouped := false
		for _, def := range autoGroupDefs {
			if def.exts[ext] {
				byName[def.name] = append(byName[def.name], f)
				grouped = true
				break
			}
		}
		if !grouped {
			ungrouped = append(ungrouped, f)
		}
	}

	var groups []model.FileGroup
	for _, def := range autoGroupDefs {
		if files := byName[def.name]; len(files) > 0 {
			groups = append(groups, model.FileGroup{
				Name:          def.name,
				Files:         files,
				AutoGenerated: true,
			})
		}
	}
	return groups, ungrouped
}

// DescriptorGroups converts a descriptor's file list into declared groups.
// A separator entry opens a new group named after it; entries before the
// first separator stay ungrouped. Only files actually present on disk (the
// pkgFiles set) are kept.
func DescriptorGroups(rec *descriptor.Record, pkgFiles []string) ([]model.FileGroup, []string) {
	present := make(map[string]bool, len(pkgFiles))
	for _, f := range pkgFiles {
		present[f] = true
	}

	var groups []model.FileGroup
	var ungrouped []string
	current := -1

	for _, entry := range rec.Files {
		if entry.Separator {
			groups = append(groups, model.FileGroup{Name: entry.Path, ReadOnly: entry.ReadOnly})
			current = len(groups) - 1
			continue
		}
		f := strings.ReplaceAll(entry.Path, "\\", "/")
		if !present[f] {
			continue
		}
		if current < 0 {
			ungrouped = append(ungrouped, f)
			continue
		}
		groups[current].Files = append(groups[current].Files, f)
	}

	// Descriptor entries never cover generated or stray files; anything on
	// disk the descriptor does not mention stays ungrouped.
	mentioned := make(map[string]bool)
	for _, g := range groups {
		for _, f := range g.Files {
			mentioned[f] = true
		}
	}
	for _, f := range ungrouped {
		mentioned[f] = true
	}
	for _, f := range pkgFiles {
		if !mentioned[f] {
			ungrouped = append(ungrouped, f)
		}
	}

	// Drop empty separator groups.
	kept := groups[:0]
	for _, g := range groups {
		if len(g.Files) > 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return nil, ungrouped
	}
	return kept, ungrouped
}
