// Package assembly resolves candidate assemblies and raw packages into the
// final repository model: every package in exactly one assembly or
// explicitly unassigned, stable identifiers assigned exactly once, and fully
// deterministic ordering.
package assembly

import (
	"sort"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// Resolve computes final assembly membership for a raw scan.
//
// Packages are processed in name order. A virtual package first looks for a
// candidate assembly of its own kind; a kind match whose root contains the
// package wins outright, beating any depth comparison. Otherwise the deepest
// containing root wins, with same-depth ties broken asymmetrically: a
// non-virtual package prefers a root-kind assembly, a virtual one prefers
// the first non-root candidate. A package no candidate contains stays
// unassigned, which is not an error.
func Resolve(scan *model.Scan) *model.Model {
	assemblies := dedupCandidates(scan.Candidates)
	for i := range assemblies {
		a := &assemblies[i]
		a.ID = model.AssemblyID(a.Name, a.Root, a.Kind)
		a.PackageIDs = nil
	}

	byKind := make(map[model.Kind]*model.Assembly)
	for i := range assemblies {
		if _, taken := byKind[assemblies[i].Kind]; !taken {
			byKind[assemblies[i].Kind] = &assemblies[i]
		}
	}

	pkgs := append([]model.Package(nil), scan.Packages...)
	sort.SliceStable(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Dir < pkgs[j].Dir
	})

	members := make(map[string][]int, len(assemblies))
	var unassigned []int

	for i := range pkgs {
		p := &pkgs[i]
		owner := chooseAssembly(p, assemblies, byKind)
		if owner == nil {
			p.AssemblyID = ""
			p.RelPath = p.Dir
			p.ID = model.PackageID("", p.RelPath, p.Name)
			unassigned = append(unassigned, i)
			continue
		}
		p.AssemblyID = owner.ID
		p.RelPath = model.RelativeTo(owner.Root, p.Dir)
		p.ID = model.PackageID(owner.ID, p.RelPath, p.Name)
		members[owner.ID] = append(members[owner.ID], i)
	}

	sort.SliceStable(assemblies, func(i, j int) bool {
		if assemblies[i].Root != assemblies[j].Root {
			return assemblies[i].Root < assemblies[j].Root
		}
		return assemblies[i].Name < assemblies[j].Name
	})

	var ordered []model.Package
	seen := make(map[string]bool)
	for i := range assemblies {
		a := &assemblies[i]
		idxs := members[a.ID]
		sort.SliceStable(idxs, func(x, y int) bool { return pkgs[idxs[x]].RelPath < pkgs[idxs[y]].RelPath })
		for _, pi := range idxs {
			p := pkgs[pi]
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			a.PackageIDs = append(a.PackageIDs, p.ID)
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(unassigned, func(x, y int) bool { return pkgs[unassigned[x]].Dir < pkgs[unassigned[y]].Dir })
	for _, pi := range unassigned {
		p := pkgs[pi]
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		ordered = append(ordered, p)
	}

	return &model.Model{
		RepoName:         scan.RepoName,
		Assemblies:       assemblies,
		Packages:         ordered,
		Detected:         scan.Candidates,
		PackagesDetected: scan.Packages,
		Unknown:          scan.Unknown,
		Internal:         scan.Internal,
	}
}

func chooseAssembly(p *model.Package, assemblies []model.Assembly, byKind map[model.Kind]*model.Assembly) *model.Assembly {
	if p.IsVirtual && p.VirtualKind != "" {
		if a, ok := byKind[model.Kind(p.VirtualKind)]; ok && model.IsAncestorOrSelf(a.Root, p.Dir) {
			return a
		}
	}

	var deepest []*model.Assembly
	bestDepth := -1
	for i := range assemblies {
		a := &assemblies[i]
		if !model.IsAncestorOrSelf(a.Root, p.Dir) {
			continue
		}
		depth := model.PathDepth(a.Root)
		switch {
		case depth > bestDepth:
			deepest = []*model.Assembly{a}
			bestDepth = depth
		case depth == bestDepth:
			deepest = append(deepest, a)
		}
	}
	if len(deepest) == 0 {
		return nil
	}
	if len(deepest) == 1 {
		return deepest[0]
	}

	if !p.IsVirtual {
		for _, a := range deepest {
			if a.Kind == model.KindRoot {
				return a
			}
		}
		return deepest[0]
	}
	for _, a := range deepest {
		if a.Kind != model.KindRoot {
			return a
		}
	}
	return deepest[0]
}

// dedupCandidates keeps the first candidate per (root, kind) pair. The
// scanner should not emit duplicates, but the resolver must not mint two IDs
// for the same assembly if it does.
func dedupCandidates(candidates []model.Assembly) []model.Assembly {
	type key struct {
		root string
		kind model.Kind
	}
	seen := make(map[key]bool, len(candidates))
	out := make([]model.Assembly, 0, len(candidates))
	for _, c := range candidates {
		k := key{c.Root, c.Kind}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}
