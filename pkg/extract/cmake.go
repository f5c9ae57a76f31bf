package extract

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/repoatlas/repoatlas/pkg/model"
)

var (
	cmakeTargetRe  = regexp.MustCompile(`\b(?:add_executable|add_library)\s*\(\s*([\w.-]+)`)
	cmakeProjectRe = regexp.MustCompile(`\bproject\s*\(\s*([\w.-]+)`)
	cmakeSourceRe  = regexp.MustCompile(`(?im)(?:^|[\s("])([\w/.-]+\.(?:c|cpp|cc|cxx|h|hpp|hxx|inl))\b`)
)

// CMake extracts targets declared in CMakeLists.txt files.
type CMake struct{}

func (CMake) BuildSystem() model.BuildSystem { return model.BuildCMake }

func (CMake) Detect(dir string) bool {
	return fileExists(filepath.Join(dir, "CMakeLists.txt"))
}

// Extract returns one package per add_executable/add_library target. A root
// CMakeLists.txt with no targets still yields a project-level package named
// after project() or the directory, so a top-level-only CMake tree is not
// invisible.
func (CMake) Extract(repoRoot, dir string) ([]model.Package, error) {
	cmakePath := filepath.Join(dir, "CMakeLists.txt")
	data, err := os.ReadFile(cmakePath)
	if err != nil {
		return nil, err
	}
	content := string(data)

	var sources []string
	for _, m := range cmakeSourceRe.FindAllStringSubmatch(content, -1) {
		src := filepath.Join(dir, filepath.FromSlash(m[1]))
		if fileExists(src) {
			sources = appendUnique(sources, relPath(repoRoot, src))
		}
	}

	relDir := relPath(repoRoot, dir)
	relCMake := relPath(repoRoot, cmakePath)

	var pkgs []model.Package
	for _, m := range cmakeTargetRe.FindAllStringSubmatch(content, -1) {
		pkgs = append(pkgs, model.Package{
			Name:        m[1],
			Dir:         relDir,
			BuildSystem: model.BuildCMake,
			Files:       append([]string(nil), sources...),
			Metadata:    map[string]string{"cmake_file": relCMake},
		})
	}
	if len(pkgs) > 0 {
		return pkgs, nil
	}

	if relDir != "." {
		return nil, nil
	}
	name := filepath.Base(repoRoot)
	if m := cmakeProjectRe.FindStringSubmatch(content); m != nil {
		name = m[1]
	}
	return []model.Package{{
		Name:        name,
		Dir:         relDir,
		BuildSystem: model.BuildCMake,
		Files:       sources,
		Metadata:    map[string]string{"cmake_file": relCMake, "target_type": "project"},
	}}, nil
}
