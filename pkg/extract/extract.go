// Package extract discovers packages declared by foreign build systems:
// CMake, Make, Autotools, Maven, and Visual Studio solutions. Each build
// system sits behind the same two-method interface so a pattern-matching
// extractor can later be swapped for a real parser without touching the
// others.
//
// Extraction is best-effort by contract: a file that fails to parse is
// skipped, never fatal. Results from different extractors are merged with
// [Merge], which collapses two descriptions of the identical (name, dir)
// pair into a single "multi" package.
package extract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// Extractor recognizes and extracts packages for one build system.
type Extractor interface {
	// BuildSystem returns the tag stamped on extracted packages.
	BuildSystem() model.BuildSystem
	// Detect reports whether dir contains this build system's entry files.
	Detect(dir string) bool
	// Extract parses the build files in dir and returns the packages they
	// declare. Paths in the result are repo-root-relative. Unparseable
	// content is skipped; an error means the directory itself could not be
	// read.
	Extract(repoRoot, dir string) ([]model.Package, error)
}

// All returns the full extractor set in detection-priority order. Make comes
// last: generated Makefiles are common in CMake and Autotools trees, and the
// scanner suppresses the Make extractor wherever a higher-level system is
// detected in the same directory.
func All() []Extractor {
	return []Extractor{CMake{}, Autotools{}, Maven{}, MSVS{}, Make{}}
}

// Merge deduplicates packages extracted by independent build systems. When
// two records describe the identical (name, dir) pair, they collapse into
// one package tagged "multi" whose build_systems metadata lists every system
// that claimed it. First-seen order is preserved; files and dependencies are
// unioned.
func Merge(pkgs []model.Package) []model.Package {
	type key struct{ name, dir string }
	index := make(map[key]int, len(pkgs))
	var out []model.Package

	for _, p := range pkgs {
		k := key{p.Name, p.Dir}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, p)
			continue
		}
		merged := &out[i]
		if merged.BuildSystem != p.BuildSystem {
			systems := appendUnique(
				strings.Split(buildSystems(merged), ","),
				string(p.BuildSystem),
			)
			merged.BuildSystem = model.BuildMulti
			if merged.Metadata == nil {
				merged.Metadata = map[string]string{}
			}
			merged.Metadata["build_systems"] = strings.Join(systems, ",")
		}
		merged.Files = appendUnique(merged.Files, p.Files...)
		merged.Dependencies = appendUnique(merged.Dependencies, p.Dependencies...)
	}
	return out
}

func buildSystems(p *model.Package) string {
	if p.Metadata != nil {
		if s, ok := p.Metadata["build_systems"]; ok {
			return s
		}
	}
	return string(p.BuildSystem)
}

func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range items {
		if s != "" && !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// relPath returns target relative to repoRoot in canonical slash form, or
// "." when they coincide.
func relPath(repoRoot, target string) string {
	rel, err := filepath.Rel(repoRoot, target)
	if err != nil {
		rel = target
	}
	return model.NormalizePath(filepath.ToSlash(rel))
}
