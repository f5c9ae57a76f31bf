package assembly

import (
	"reflect"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func TestResolve_DeepestRootWins(t *testing.T) {
	scan := &model.Scan{
		RepoName: "repo",
		Candidates: []model.Assembly{
			{Name: "repo", Root: ".", Kind: model.KindRoot},
			{Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative},
		},
		Packages: []model.Package{
			{Name: "Core", Dir: "uppsrc/Core", BuildSystem: model.BuildNative},
			{Name: "standalone", Dir: "standalone", BuildSystem: model.BuildNative},
		},
	}
	m := Resolve(scan)

	var uppsrc, root *model.Assembly
	for i := range m.Assemblies {
		switch m.Assemblies[i].Kind {
		case model.KindNative:
			uppsrc = &m.Assemblies[i]
		case model.KindRoot:
			root = &m.Assemblies[i]
		}
	}
	core := m.PackageByID(byName(t, m, "Core").ID)
	if core.AssemblyID != uppsrc.ID {
		t.Errorf("Core assigned to %q, want the deeper uppsrc assembly", core.AssemblyID)
	}
	if core.RelPath != "Core" {
		t.Errorf("Core.RelPath = %q, want Core (relative to assembly root)", core.RelPath)
	}
	standalone := byName(t, m, "standalone")
	if standalone.AssemblyID != root.ID {
		t.Errorf("standalone assigned to %q, want the root assembly", standalone.AssemblyID)
	}
}

func TestResolve_VirtualKindBeatsDepth(t *testing.T) {
	// A scripts-kind assembly at the repo root and a root-kind assembly at
	// the same root: the virtual scripts package goes to the scripts
	// assembly, kind match beats any depth comparison.
	scan := &model.Scan{
		RepoName: "repo",
		Candidates: []model.Assembly{
			{Name: "repo", Root: ".", Kind: model.KindRoot},
			{Name: "scripts", Root: ".", Kind: model.KindScripts},
		},
		Packages: []model.Package{
			{Name: "scripts_scripts", Dir: ".", BuildSystem: model.BuildVirtual, IsVirtual: true, VirtualKind: "scripts", Files: []string{"foo.bat"}},
			{Name: "tool", Dir: ".", BuildSystem: model.BuildMake},
		},
	}
	m := Resolve(scan)

	var scripts, root *model.Assembly
	for i := range m.Assemblies {
		switch m.Assemblies[i].Kind {
		case model.KindScripts:
			scripts = &m.Assemblies[i]
		case model.KindRoot:
			root = &m.Assemblies[i]
		}
	}
	if scripts.ID == root.ID {
		t.Fatal("same-root assemblies of different kind must have distinct IDs")
	}
	if got := byName(t, m, "scripts_scripts").AssemblyID; got != scripts.ID {
		t.Errorf("virtual package assigned to %q, want scripts assembly %q", got, scripts.ID)
	}
	// The non-virtual package prefers the root-kind assembly at the tie.
	if got := byName(t, m, "tool").AssemblyID; got != root.ID {
		t.Errorf("tool assigned to %q, want root assembly %q", got, root.ID)
	}
}

func TestResolve_DisjointMembership(t *testing.T) {
	scan := &model.Scan{
		RepoName: "repo",
		Candidates: []model.Assembly{
			{Name: "repo", Root: ".", Kind: model.KindRoot},
			{Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative},
			{Name: "docs", Root: "docs", Kind: model.KindDocs},
		},
		Packages: []model.Package{
			{Name: "Core", Dir: "uppsrc/Core", BuildSystem: model.BuildNative},
			{Name: "Draw", Dir: "uppsrc/Draw", BuildSystem: model.BuildNative},
			{Name: "docs_docs", Dir: "docs", BuildSystem: model.BuildVirtual, IsVirtual: true, VirtualKind: "docs"},
		},
	}
	m := Resolve(scan)

	seen := map[string]string{}
	total := 0
	for _, a := range m.Assemblies {
		ids := map[string]bool{}
		for _, id := range a.PackageIDs {
			if ids[id] {
				t.Errorf("assembly %s lists %s twice", a.Name, id)
			}
			ids[id] = true
			if prev, ok := seen[id]; ok {
				t.Errorf("package %s in both %s and %s", id, prev, a.Name)
			}
			seen[id] = a.Name
			total++
		}
	}
	if total+len(m.Unassigned()) != len(m.Packages) {
		t.Errorf("membership union %d + unassigned %d != %d packages",
			total, len(m.Unassigned()), len(m.Packages))
	}
}

func TestResolve_UnassignedTolerated(t *testing.T) {
	scan := &model.Scan{
		RepoName: "repo",
		Candidates: []model.Assembly{
			{Name: "sub", Root: "sub", Kind: model.KindNative},
		},
		Packages: []model.Package{
			{Name: "orphan", Dir: "elsewhere/orphan", BuildSystem: model.BuildNative},
		},
	}
	m := Resolve(scan)
	orphan := byName(t, m, "orphan")
	if orphan.AssemblyID != "" {
		t.Errorf("AssemblyID = %q, want empty for uncontained package", orphan.AssemblyID)
	}
	if orphan.RelPath != "elsewhere/orphan" {
		t.Errorf("RelPath = %q, want repo-relative fallback", orphan.RelPath)
	}
	if orphan.ID == "" {
		t.Error("unassigned package still needs a stable ID")
	}
}

func TestResolve_StableAcrossRuns(t *testing.T) {
	scan := func() *model.Scan {
		return &model.Scan{
			RepoName: "repo",
			Candidates: []model.Assembly{
				{Name: "repo", Root: ".", Kind: model.KindRoot},
				{Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative},
			},
			Packages: []model.Package{
				{Name: "B", Dir: "uppsrc/B", BuildSystem: model.BuildNative},
				{Name: "A", Dir: "uppsrc/A", BuildSystem: model.BuildNative},
			},
		}
	}
	first := Resolve(scan())
	second := Resolve(scan())
	if !reflect.DeepEqual(first, second) {
		t.Error("resolving the same scan twice produced different models")
	}
	// Members are ordered by path relative to the assembly root.
	asm := first.Assemblies[1]
	if len(asm.PackageIDs) != 2 {
		t.Fatalf("PackageIDs = %v", asm.PackageIDs)
	}
	if first.Packages[0].Name != "A" || first.Packages[1].Name != "B" {
		t.Errorf("package order = %s, %s, want A, B", first.Packages[0].Name, first.Packages[1].Name)
	}
}

func TestResolve_DetectedPackagesKeepRawForm(t *testing.T) {
	// The packages_detected view carries the scanner's packages as found,
	// before IDs and membership are assigned.
	scan := &model.Scan{
		RepoName: "repo",
		Candidates: []model.Assembly{
			{Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative},
		},
		Packages: []model.Package{
			{Name: "Core", Dir: "uppsrc/Core", BuildSystem: model.BuildNative},
		},
	}
	m := Resolve(scan)
	if len(m.PackagesDetected) != 1 {
		t.Fatalf("len(PackagesDetected) = %d, want 1", len(m.PackagesDetected))
	}
	raw := m.PackagesDetected[0]
	if raw.ID != "" || raw.AssemblyID != "" || raw.RelPath != "" {
		t.Errorf("detected view gained resolution fields: %+v", raw)
	}
	if raw.Name != "Core" || raw.Dir != "uppsrc/Core" {
		t.Errorf("detected view = %+v, want the raw scanned package", raw)
	}
	if byName(t, m, "Core").ID == "" {
		t.Error("resolved package lost its ID")
	}
}

func TestResolve_KindIsIDInput(t *testing.T) {
	a := model.AssemblyID("x", ".", model.KindScripts)
	b := model.AssemblyID("x", ".", model.KindRoot)
	if a == b {
		t.Error("assembly IDs must differ when only the kind differs")
	}
}

func byName(t *testing.T, m *model.Model, name string) *model.Package {
	t.Helper()
	for i := range m.Packages {
		if m.Packages[i].Name == name {
			return &m.Packages[i]
		}
	}
	t.Fatalf("package %s not in model", name)
	return nil
}
