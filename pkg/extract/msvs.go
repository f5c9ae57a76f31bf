package extract

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

var slnProjectRe = regexp.MustCompile(`(?m)^Project\("\{[^}]+\}"\)\s*=\s*"([^"]+)",\s*"([^"]+)"`)

var vcprojFileRe = regexp.MustCompile(`RelativePath="([^"]+)"`)

// MSVS extracts packages from Visual Studio solutions: each Project line in
// a .sln yields one package backed by its .vcxproj/.csproj (MSBuild XML) or
// legacy .vcproj project file.
type MSVS struct{}

func (MSVS) BuildSystem() model.BuildSystem { return model.BuildMSVS }

func (MSVS) Detect(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.sln"))
	return err == nil && len(matches) > 0
}

func (MSVS) Extract(repoRoot, dir string) ([]model.Package, error) {
	slnPaths, err := filepath.Glob(filepath.Join(dir, "*.sln"))
	if err != nil {
		return nil, err
	}

	var pkgs []model.Package
	for _, slnPath := range slnPaths {
		data, err := os.ReadFile(slnPath)
		if err != nil {
			continue
		}
		relSln := relPath(repoRoot, slnPath)

		for _, m := range slnProjectRe.FindAllStringSubmatch(string(data), -1) {
			name := m[1]
			projRel := filepath.FromSlash(strings.ReplaceAll(m[2], "\\", "/"))
			projPath := filepath.Join(dir, projRel)

			// Solution folders list themselves as projects; only real
			// project files become packages.
			switch filepath.Ext(projPath) {
			case ".vcxproj", ".csproj", ".vcproj":
			default:
				continue
			}

			pkgs = append(pkgs, model.Package{
				Name:        name,
				Dir:         relPath(repoRoot, filepath.Dir(projPath)),
				BuildSystem: model.BuildMSVS,
				Files:       projectFiles(repoRoot, projPath),
				Metadata: map[string]string{
					"solution":     relSln,
					"project_file": relPath(repoRoot, projPath),
				},
			})
		}
	}
	return pkgs, nil
}

// msbuildItem is one file reference inside an MSBuild project. Include may
// contain wildcards, which are expanded against the project directory.
type msbuildItem struct {
	Include string `xml:"Include,attr"`
}

type msbuildProject struct {
	ItemGroups []struct {
		ClCompile []msbuildItem `xml:"ClCompile"`
		ClInclude []msbuildItem `xml:"ClInclude"`
		Compile   []msbuildItem `xml:"Compile"`
		Content   []msbuildItem `xml:"Content"`
	} `xml:"ItemGroup"`
}

func projectFiles(repoRoot, projPath string) []string {
	data, err := os.ReadFile(projPath)
	if err != nil {
		return nil
	}
	projDir := filepath.Dir(projPath)

	var includes []string
	if filepath.Ext(projPath) == ".vcproj" {
		for _, m := range vcprojFileRe.FindAllStringSubmatch(string(data), -1) {
			includes = append(includes, m[1])
		}
	} else {
		var proj msbuildProject
		if err := xml.Unmarshal(data, &proj); err != nil {
			return nil
		}
		for _, group := range proj.ItemGroups {
			for _, items := range [][]msbuildItem{group.ClCompile, group.ClInclude, group.Compile, group.Content} {
				for _, item := range items {
					if item.Include != "" {
						includes = append(includes, item.Include)
					}
				}
			}
		}
	}

	var files []string
	for _, inc := range includes {
		inc = filepath.FromSlash(strings.ReplaceAll(inc, "\\", "/"))
		full := filepath.Join(projDir, inc)
		if strings.ContainsAny(inc, "*?") {
			matches, err := filepath.Glob(full)
			if err != nil {
				continue
			}
			for _, match := range matches {
				if fileExists(match) {
					files = appendUnique(files, relPath(repoRoot, match))
				}
			}
			continue
		}
		if fileExists(full) {
			files = appendUnique(files, relPath(repoRoot, full))
		}
	}
	return files
}
