package extract

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// Maven extracts one package per pom.xml, named groupId:artifactId.
type Maven struct{}

func (Maven) BuildSystem() model.BuildSystem { return model.BuildMaven }

func (Maven) Detect(dir string) bool {
	return fileExists(filepath.Join(dir, "pom.xml"))
}

type pomFile struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Packaging  string `xml:"packaging"`
	Parent     struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
	} `xml:"parent"`
	Modules      []string `xml:"modules>module"`
	Dependencies []struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
	} `xml:"dependencies>dependency"`
}

var mavenSourceDirs = []string{
	"src/main/java",
	"src/main/resources",
	"src/test/java",
	"src/test/resources",
}

func (Maven) Extract(repoRoot, dir string) ([]model.Package, error) {
	pomPath := filepath.Join(dir, "pom.xml")
	data, err := os.ReadFile(pomPath)
	if err != nil {
		return nil, err
	}

	var pom pomFile
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, nil
	}
	if pom.ArtifactID == "" {
		return nil, nil
	}

	groupID := pom.GroupID
	if groupID == "" {
		groupID = pom.Parent.GroupID
	}
	name := pom.ArtifactID
	if groupID != "" {
		name = groupID + ":" + pom.ArtifactID
	}

	var deps []string
	for _, d := range pom.Dependencies {
		if d.ArtifactID == "" {
			continue
		}
		if d.GroupID != "" {
			deps = append(deps, d.GroupID+":"+d.ArtifactID)
		} else {
			deps = append(deps, d.ArtifactID)
		}
	}

	meta := map[string]string{"pom_file": relPath(repoRoot, pomPath)}
	if pom.Packaging != "" {
		meta["packaging"] = pom.Packaging
	}
	if pom.Parent.ArtifactID != "" {
		parent := pom.Parent.ArtifactID
		if pom.Parent.GroupID != "" {
			parent = pom.Parent.GroupID + ":" + pom.Parent.ArtifactID
		}
		meta["parent"] = parent
	}
	if len(pom.Modules) > 0 {
		meta["modules"] = strings.Join(pom.Modules, ",")
	}
	var srcDirs []string
	for _, sd := range mavenSourceDirs {
		if dirExists(filepath.Join(dir, filepath.FromSlash(sd))) {
			srcDirs = append(srcDirs, relPath(repoRoot, filepath.Join(dir, filepath.FromSlash(sd))))
		}
	}
	if len(srcDirs) > 0 {
		meta["source_dirs"] = strings.Join(srcDirs, ",")
	}

	return []model.Package{{
		Name:         name,
		Dir:          relPath(repoRoot, dir),
		BuildSystem:  model.BuildMaven,
		Dependencies: deps,
		Metadata:     meta,
	}}, nil
}
