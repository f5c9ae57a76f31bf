// Package model defines the canonical repository model produced by a scan:
// packages, assemblies, unknown paths, and the stable identifiers that tie
// them together.
//
// All entities are value records, freshly produced on each scan. The final
// model is two flat, ordered sequences (assemblies and packages) that
// cross-reference each other only by ID - never an object graph. Paths are
// repository-root-relative and slash-separated, so that scanning the same
// tree from different locations yields byte-identical output.
package model

// BuildSystem tags the convention a package was discovered under.
type BuildSystem string

const (
	BuildNative    BuildSystem = "native"
	BuildCMake     BuildSystem = "cmake"
	BuildMake      BuildSystem = "make"
	BuildAutotools BuildSystem = "autotools"
	BuildMaven     BuildSystem = "maven"
	BuildMSVS      BuildSystem = "msvs"
	BuildMulti     BuildSystem = "multi"
	BuildVirtual   BuildSystem = "virtual"
)

// Kind categorizes an assembly.
type Kind string

const (
	KindNative    Kind = "native"
	KindCMake     Kind = "cmake"
	KindMake      Kind = "make"
	KindAutotools Kind = "autotools"
	KindMaven     Kind = "maven"
	KindMSVS      Kind = "msvs"
	KindMulti     Kind = "multi"
	KindMisc      Kind = "misc"
	KindDocs      Kind = "docs"
	KindTests     Kind = "tests"
	KindScripts   Kind = "scripts"
	KindRoot      Kind = "root"
)

// KindForBuildSystem maps a package build-system tag to the assembly kind
// used when all members of an assembly share that build system.
func KindForBuildSystem(bs BuildSystem) Kind {
	switch bs {
	case BuildNative:
		return KindNative
	case BuildCMake:
		return KindCMake
	case BuildMake:
		return KindMake
	case BuildAutotools:
		return KindAutotools
	case BuildMaven:
		return KindMaven
	case BuildMSVS:
		return KindMSVS
	case BuildMulti:
		return KindMulti
	default:
		return KindMisc
	}
}

// FileGroup is a named, presentation-only grouping of package files.
type FileGroup struct {
	Name          string   `json:"name"`
	Files         []string `json:"files"`
	ReadOnly      bool     `json:"readonly"`
	AutoGenerated bool     `json:"auto_generated"`
}

// Package is a unit of source discovered under one build-system convention,
// or a synthesized virtual bucket for docs/tests/scripts content.
//
// The (Name, Dir, BuildSystem) triple is unique across a scan. Dir and
// DescriptorPath are repo-root-relative. RelPath is the directory path
// relative to the owning assembly root (or the repo root when unassigned)
// and is only set once membership has been resolved.
type Package struct {
	ID             string            `json:"package_id,omitempty"`
	Name           string            `json:"name"`
	Dir            string            `json:"dir_relpath"`
	RelPath        string            `json:"package_relpath,omitempty"`
	AssemblyID     string            `json:"assembly_id,omitempty"`
	DescriptorPath string            `json:"descriptor_path,omitempty"`
	BuildSystem    BuildSystem       `json:"build_system"`
	Files          []string          `json:"files,omitempty"`
	Dependencies   []string          `json:"dependencies,omitempty"`
	Groups         []FileGroup       `json:"groups,omitempty"`
	UngroupedFiles []string          `json:"ungrouped_files,omitempty"`
	IsVirtual      bool              `json:"is_virtual,omitempty"`
	VirtualKind    string            `json:"virtual_kind,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Assembly is a named grouping of packages rooted at a directory.
//
// The (Root, Kind) pair is unique: two assemblies may share a root only when
// their kinds differ, which commonly happens when a scripts-kind bucket and a
// root-kind assembly both sit at the repository root.
type Assembly struct {
	ID           string            `json:"assembly_id,omitempty"`
	Name         string            `json:"name"`
	Root         string            `json:"root_relpath"`
	Kind         Kind              `json:"kind"`
	PackageIDs   []string          `json:"package_ids,omitempty"`
	BuildSystems []string          `json:"build_systems,omitempty"`
	Evidence     []string          `json:"evidence,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// UnknownPath is a file or directory that belongs to no detected package.
// Unknown paths are transient: they feed internal-package inference and the
// virtual docs/tests/scripts buckets, and are retained only for diagnostics.
type UnknownPath struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Kind  string `json:"guessed_kind"`
}

// InternalPackage groups unknown paths by top-level directory (or a single
// root-level misc bucket) with a dominant guessed kind.
type InternalPackage struct {
	Name           string      `json:"name"`
	Root           string      `json:"root_relpath"`
	Kind           string      `json:"guessed_type"`
	Members        []string    `json:"members"`
	Groups         []FileGroup `json:"groups,omitempty"`
	UngroupedFiles []string    `json:"ungrouped_files,omitempty"`
}

// Scan is the raw output of the repository tree scanner: packages without
// IDs, candidate assemblies without membership, and the unknown-path and
// internal-package views. The assembly resolver turns a Scan into a Model.
type Scan struct {
	RepoName   string
	Candidates []Assembly
	Packages   []Package
	Unknown    []UnknownPath
	Internal   []InternalPackage
}

// Model is the final, resolved repository model. Assemblies and Packages are
// deterministically ordered and carry stable identifiers; packages with an
// empty AssemblyID are explicitly unassigned. Detected, PackagesDetected,
// Unknown, and Internal preserve the raw pre-resolution scanner views for
// reporting consumers; packages in PackagesDetected carry no IDs.
type Model struct {
	RepoName         string            `json:"repo_name"`
	Assemblies       []Assembly        `json:"assemblies"`
	Packages         []Package         `json:"packages"`
	Detected         []Assembly        `json:"assemblies_detected,omitempty"`
	PackagesDetected []Package         `json:"packages_detected,omitempty"`
	Unknown          []UnknownPath     `json:"unknown_paths,omitempty"`
	Internal         []InternalPackage `json:"internal_packages,omitempty"`
}

// PackageByID returns the package with the given ID, or nil.
func (m *Model) PackageByID(id string) *Package {
	for i := range m.Packages {
		if m.Packages[i].ID == id {
			return &m.Packages[i]
		}
	}
	return nil
}

// AssemblyByID returns the assembly with the given ID, or nil.
func (m *Model) AssemblyByID(id string) *Assembly {
	for i := range m.Assemblies {
		if m.Assemblies[i].ID == id {
			return &m.Assemblies[i]
		}
	}
	return nil
}

// Unassigned returns the packages that no assembly claimed. An unassigned
// package is not an error; callers may flag it without failing the scan.
func (m *Model) Unassigned() []Package {
	var out []Package
	for _, p := range m.Packages {
		if p.AssemblyID == "" {
			out = append(out, p)
		}
	}
	return out
}
