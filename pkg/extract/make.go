package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

var makefileNames = []string{"Makefile", "GNUmakefile", "makefile"}

var makeTargetRe = regexp.MustCompile(`(?m)^([A-Za-z][\w.-]*)\s*:(?:[^=]|$)`)

// Make extracts a per-directory package from plain Makefiles. Full Makefile
// semantics are out of reach for pattern matching, so the package records the
// makefile location and its plain rule targets and leaves sources empty.
type Make struct{}

func (Make) BuildSystem() model.BuildSystem { return model.BuildMake }

func (Make) Detect(dir string) bool {
	for _, name := range makefileNames {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func (Make) Extract(repoRoot, dir string) ([]model.Package, error) {
	var makefilePath string
	for _, name := range makefileNames {
		if p := filepath.Join(dir, name); fileExists(p) {
			makefilePath = p
			break
		}
	}
	if makefilePath == "" {
		return nil, nil
	}

	name := filepath.Base(dir)
	if relPath(repoRoot, dir) == "." {
		name = filepath.Base(repoRoot)
	}

	meta := map[string]string{"makefile": relPath(repoRoot, makefilePath)}
	if data, err := os.ReadFile(makefilePath); err == nil {
		var targets []string
		for _, m := range makeTargetRe.FindAllStringSubmatch(string(data), -1) {
			if t := m[1]; t != ".PHONY" {
				targets = appendUnique(targets, t)
			}
		}
		if len(targets) > 0 {
			meta["targets"] = strings.Join(targets, ",")
		}
	}

	return []model.Package{{
		Name:        name + "-makefile",
		Dir:         relPath(repoRoot, dir),
		BuildSystem: model.BuildMake,
		Metadata:    meta,
	}}, nil
}
