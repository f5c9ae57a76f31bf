// Package scanner walks a repository tree and produces the raw scan: native
// and foreign packages, candidate assemblies, unknown paths, and inferred
// internal packages.
//
// Scanning is two-pass over a materialized directory index. The first pass
// finds every native package root (a directory P containing a descriptor
// named P.<ext>). The second pass classifies the rest of the tree, pruning
// descent into package subtrees except along ancestor chains that lead to
// nested package roots - which is why the first pass must complete before the
// second starts.
package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/repoatlas/repoatlas/pkg/descriptor"
	"github.com/repoatlas/repoatlas/pkg/extract"
	"github.com/repoatlas/repoatlas/pkg/model"
)

// Options controls what the scanner treats as a package and what it skips.
type Options struct {
	// SkipDirs are directory names never descended into, in addition to
	// dot-prefixed names.
	SkipDirs []string
	// SourceExtensions is the allow-list for package file collection.
	SourceExtensions []string
	// DescriptorExtensions are the native descriptor suffixes, ".upp" by
	// default.
	DescriptorExtensions []string
	// ActiveFlags feed conditional uses clauses in descriptors.
	ActiveFlags []string
}

// DefaultOptions returns the stock skip list and extension sets.
func DefaultOptions() Options {
	return Options{
		SkipDirs: []string{
			"node_modules", "__pycache__", "venv", "env",
			"build", "dist", "out", "target", "bin", "obj",
			"Debug", "Release", "x64", "x86", "CMakeFiles",
			"cache", "tmp", "temp",
		},
		SourceExtensions: []string{
			".cpp", ".cppi", ".icpp", ".h", ".hpp", ".inl",
			".c", ".cc", ".cxx", ".upl", ".upp", ".t",
		},
		DescriptorExtensions: []string{".upp"},
	}
}

// Scanner scans one repository tree at a time. It is not safe for concurrent
// use of a single instance; create one per scan.
type Scanner struct {
	opts   Options
	skip   map[string]bool
	srcExt map[string]bool
	logger *log.Logger
}

// New creates a scanner. A nil logger falls back to log.Default.
func New(opts Options, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	s := &Scanner{
		opts:   opts,
		skip:   make(map[string]bool, len(opts.SkipDirs)),
		srcExt: make(map[string]bool, len(opts.SourceExtensions)),
		logger: logger,
	}
	for _, d := range opts.SkipDirs {
		s.skip[d] = true
	}
	for _, e := range opts.SourceExtensions {
		s.srcExt[strings.ToLower(e)] = true
	}
	return s
}

// Scan walks the repository at repoRoot and returns the raw scan result.
// Only the root being unreadable is an error; everything below degrades to
// skipped content.
func (s *Scanner) Scan(repoRoot string) (*model.Scan, error) {
	idx, err := BuildIndex(repoRoot, s.skip)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", repoRoot, err)
	}
	repoName := filepath.Base(idx.Root)

	natives, pkgRoots := s.nativePackages(idx, repoName)
	ancestors := ancestorSet(pkgRoots)
	unknown := s.unknownPaths(idx, pkgRoots, ancestors)

	packages := extract.Merge(append(natives, s.foreignPackages(idx)...))
	for i := range packages {
		p := &packages[i]
		if p.BuildSystem != model.BuildNative && len(p.Groups) == 0 && len(p.Files) > 0 {
			p.Groups, p.UngroupedFiles = AutoGroup(p.Files)
		}
	}

	virtualPkgs, virtualAsms := s.virtualBuckets(unknown)
	packages = append(packages, virtualPkgs...)

	candidates := append(s.assemblyCandidates(repoName, packages, pkgRoots), virtualAsms...)

	sort.SliceStable(packages, func(i, j int) bool {
		if packages[i].Name != packages[j].Name {
			return packages[i].Name < packages[j].Name
		}
		return packages[i].Dir < packages[j].Dir
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Root != candidates[j].Root {
			return candidates[i].Root < candidates[j].Root
		}
		return candidates[i].Name < candidates[j].Name
	})
	sort.SliceStable(unknown, func(i, j int) bool { return unknown[i].Path < unknown[j].Path })

	return &model.Scan{
		RepoName:   repoName,
		Candidates: candidates,
		Packages:   packages,
		Unknown:    unknown,
		Internal:   InferInternalPackages(unknown),
	}, nil
}

// nativePackages finds every directory P containing a descriptor named
// P.<ext> and builds a package from it. The returned set holds the package
// root paths for the pruning pass.
func (s *Scanner) nativePackages(idx *Index, repoName string) ([]model.Package, map[string]bool) {
	var pkgs []model.Package
	roots := make(map[string]bool)

	for i := range idx.nodes {
		n := &idx.nodes[i]
		name := path.Base(n.Path)
		if n.Path == "." {
			name = repoName
		}

		var descName string
		for _, ext := range s.opts.DescriptorExtensions {
			if containsString(n.Files, name+ext) {
				descName = name + ext
				break
			}
		}
		if descName == "" {
			continue
		}

		descPath := path.Join(n.Path, descName)
		s.logger.Debug("package found", "name", name, "dir", n.Path)

		var files []string
		for _, f := range idx.FilesUnder(n.Path) {
			if s.srcExt[strings.ToLower(path.Ext(f))] {
				files = append(files, f)
			}
		}
		sort.Strings(files)

		pkg := model.Package{
			Name:           name,
			Dir:            n.Path,
			DescriptorPath: descPath,
			BuildSystem:    model.BuildNative,
			Files:          files,
			UngroupedFiles: files,
		}
		rec, err := descriptor.ParseFile(idx.Abs(descPath))
		if err != nil {
			s.logger.Warn("descriptor unreadable", "path", descPath, "err", err)
		} else {
			pkg.Dependencies = rec.DependencyNames(s.opts.ActiveFlags)
			pkg.Groups, pkg.UngroupedFiles = DescriptorGroups(rec, files)
		}

		pkgs = append(pkgs, pkg)
		roots[n.Path] = true
	}
	return pkgs, roots
}

// ancestorSet returns every proper ancestor directory of a package root,
// excluding the repository root itself.
func ancestorSet(pkgRoots map[string]bool) map[string]bool {
	ancestors := make(map[string]bool)
	for root := range pkgRoots {
		for p := path.Dir(root); p != "." && !ancestors[p]; p = path.Dir(p) {
			ancestors[p] = true
		}
	}
	return ancestors
}

func underAnyRoot(p string, pkgRoots map[string]bool) bool {
	for root := range pkgRoots {
		if model.IsAncestorOrSelf(root, p) {
			return true
		}
	}
	return false
}

// unknownPaths runs the pruned second pass. A directory is unknown when it
// is not a package root, not inside one, and not an ancestor of one. A file
// is unknown when its directory is not a package root or inside one.
func (s *Scanner) unknownPaths(idx *Index, pkgRoots, ancestors map[string]bool) []model.UnknownPath {
	var unknown []model.UnknownPath

	var visit func(i int)
	visit = func(i int) {
		n := &idx.nodes[i]
		inPackage := underAnyRoot(n.Path, pkgRoots)

		if n.Path != "." && !inPackage && !ancestors[n.Path] {
			unknown = append(unknown, model.UnknownPath{
				Path: n.Path, IsDir: true, Kind: GuessPathKind(n.Path),
			})
		}
		for _, f := range n.Files {
			if !inPackage {
				p := path.Join(n.Path, f)
				unknown = append(unknown, model.UnknownPath{
					Path: p, Kind: GuessPathKind(p),
				})
			}
		}
		for _, c := range n.Children {
			cp := idx.nodes[c].Path
			if ancestors[cp] {
				visit(c)
				continue
			}
			if pkgRoots[cp] || underAnyRoot(cp, pkgRoots) {
				continue
			}
			visit(c)
		}
	}
	visit(0)
	return unknown
}

// foreignPackages runs every build-system extractor over every directory in
// the index. The Make extractor is suppressed in directories where CMake or
// Autotools is present, since both generate Makefiles.
func (s *Scanner) foreignPackages(idx *Index) []model.Package {
	extractors := extract.All()

	var pkgs []model.Package
	for _, dir := range idx.Dirs() {
		abs := idx.Abs(dir)
		higher := false
		for _, ex := range extractors {
			bs := ex.BuildSystem()
			if bs == model.BuildMake && higher {
				continue
			}
			if !ex.Detect(abs) {
				continue
			}
			if bs == model.BuildCMake || bs == model.BuildAutotools {
				higher = true
			}
			found, err := ex.Extract(idx.Root, abs)
			if err != nil {
				s.logger.Warn("extractor failed", "build_system", bs, "dir", dir, "err", err)
				continue
			}
			pkgs = append(pkgs, found...)
		}
	}
	return pkgs
}

var virtualBucketNames = []string{"docs", "tests", "scripts"}

// virtualBuckets synthesizes virtual packages and their candidate
// assemblies for docs/, tests/, and scripts/ content found among the unknown
// paths, plus loose root-level script files. Each non-empty bucket yields one
// assembly of the matching kind and at least one virtual package.
func (s *Scanner) virtualBuckets(unknown []model.UnknownPath) ([]model.Package, []model.Assembly) {
	var pkgs []model.Package
	var asms []model.Assembly

	for _, bucket := range virtualBucketNames {
		var files []string
		hasDir, hasLoose := false, false
		for _, u := range unknown {
			top, _, nested := strings.Cut(u.Path, "/")
			if top == bucket && nested {
				if !u.IsDir {
					files = append(files, u.Path)
				}
				hasDir = true
				continue
			}
			if bucket == "scripts" && !nested && !u.IsDir && u.Kind == "scripts" {
				files = append(files, u.Path)
				hasLoose = true
			}
		}
		if len(files) == 0 {
			continue
		}

		root := "."
		if hasDir && !hasLoose {
			root = bucket
		}

		groups, ungrouped := AutoGroup(files)
		if len(groups) == 0 {
			pkgs = append(pkgs, virtualPackage(bucket, bucket, root, ungrouped))
		} else {
			for _, g := range groups {
				pkgs = append(pkgs, virtualPackage(bucket+"_"+g.Name, bucket, root, g.Files))
			}
			if len(ungrouped) > 0 {
				pkgs = append(pkgs, virtualPackage(bucket+"_misc", bucket, root, ungrouped))
			}
		}

		asms = append(asms, model.Assembly{
			Name:         bucket,
			Root:         root,
			Kind:         model.Kind(bucket),
			BuildSystems: []string{string(model.BuildVirtual)},
			Metadata:     map[string]string{"virtual": "true"},
		})
	}
	return pkgs, asms
}

func virtualPackage(name, kind, dir string, files []string) model.Package {
	return model.Package{
		Name:        name,
		Dir:         dir,
		BuildSystem: model.BuildVirtual,
		Files:       files,
		IsVirtual:   true,
		VirtualKind: kind,
	}
}

// assemblyCandidates derives candidate assemblies from non-virtual package
// layout: the immediate parent of one or more package directories is a
// candidate unless it is itself a package root. Packages whose parent is the
// repository root yield the root-kind assembly, so every package stays
// reachable from some assembly.
func (s *Scanner) assemblyCandidates(repoName string, packages []model.Package, pkgRoots map[string]bool) []model.Assembly {
	byParent := make(map[string][]*model.Package)
	for i := range packages {
		p := &packages[i]
		if p.IsVirtual {
			continue
		}
		parent := path.Dir(p.Dir)
		if pkgRoots[parent] {
			continue
		}
		byParent[parent] = append(byParent[parent], p)
	}

	parents := make([]string, 0, len(byParent))
	for parent := range byParent {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	var asms []model.Assembly
	for _, parent := range parents {
		members := byParent[parent]

		systems := make(map[string]bool)
		for _, p := range members {
			systems[string(p.BuildSystem)] = true
		}
		buildSystems := make([]string, 0, len(systems))
		for bs := range systems {
			buildSystems = append(buildSystems, bs)
		}
		sort.Strings(buildSystems)

		name, kind := path.Base(parent), assemblyKind(buildSystems)
		if parent == "." {
			name, kind = repoName, model.KindRoot
		}
		asms = append(asms, model.Assembly{
			Name:         name,
			Root:         parent,
			Kind:         kind,
			BuildSystems: buildSystems,
		})
	}
	return asms
}

func assemblyKind(buildSystems []string) model.Kind {
	if len(buildSystems) == 1 {
		return model.KindForBuildSystem(model.BuildSystem(buildSystems[0]))
	}
	return model.KindMulti
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
