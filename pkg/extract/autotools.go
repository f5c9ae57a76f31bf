package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

var (
	acInitRe     = regexp.MustCompile(`AC_INIT\s*\(\s*\[?([\w.-]+)\]?`)
	amProgramsRe = regexp.MustCompile(`(?m)^\s*(?:bin|noinst|sbin|libexec)_PROGRAMS\s*\+?=\s*(.+)$`)
	amLibsRe     = regexp.MustCompile(`(?m)^\s*(?:lib|noinst|pkglib)_LTLIBRARIES\s*\+?=\s*(.+)$`)
)

// Autotools extracts packages from configure.ac/configure.in and Makefile.am
// pairs. Targets come from the PROGRAMS/LTLIBRARIES primaries, sources from
// the matching <target>_SOURCES variable.
type Autotools struct{}

func (Autotools) BuildSystem() model.BuildSystem { return model.BuildAutotools }

func (Autotools) Detect(dir string) bool {
	for _, name := range []string{"configure.ac", "configure.in", "Makefile.am"} {
		if fileExists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func (Autotools) Extract(repoRoot, dir string) ([]model.Package, error) {
	project := autotoolsProjectName(repoRoot, dir)
	relDir := relPath(repoRoot, dir)

	var pkgs []model.Package
	amPath := filepath.Join(dir, "Makefile.am")
	if data, err := os.ReadFile(amPath); err == nil {
		content := joinContinuations(string(data))
		for _, target := range amTargets(content) {
			pkgs = append(pkgs, model.Package{
				Name:        target,
				Dir:         relDir,
				BuildSystem: model.BuildAutotools,
				Files:       amSources(repoRoot, dir, content, target),
				Metadata: map[string]string{
					"automake_file": relPath(repoRoot, amPath),
					"project":       project,
				},
			})
		}
	}
	if len(pkgs) > 0 {
		return pkgs, nil
	}

	// No declared targets: a bare configure.ac tree still counts as one
	// project-level package.
	return []model.Package{{
		Name:        project,
		Dir:         relDir,
		BuildSystem: model.BuildAutotools,
		Metadata:    map[string]string{"project": project},
	}}, nil
}

func autotoolsProjectName(repoRoot, dir string) string {
	for _, name := range []string{"configure.ac", "configure.in"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if m := acInitRe.FindStringSubmatch(string(data)); m != nil {
			return m[1]
		}
	}
	if relPath(repoRoot, dir) == "." {
		return filepath.Base(repoRoot)
	}
	return filepath.Base(dir)
}

// joinContinuations folds automake's backslash line continuations so that
// variable assignments become single logical lines.
func joinContinuations(content string) string {
	return strings.ReplaceAll(strings.ReplaceAll(content, "\\\r\n", " "), "\\\n", " ")
}

func amTargets(content string) []string {
	var targets []string
	for _, re := range []*regexp.Regexp{amProgramsRe, amLibsRe} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			targets = appendUnique(targets, strings.Fields(m[1])...)
		}
	}
	return targets
}

// amSources resolves the <target>_SOURCES list. The target name is
// transliterated the way automake does it ('-' and '.' become '_'), and each
// source is tried against the repository root first, then the Makefile.am
// directory.
func amSources(repoRoot, amDir, content, target string) []string {
	varName := strings.NewReplacer("-", "_", ".", "_").Replace(target)
	re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(varName) + `_SOURCES\s*\+?=\s*(.+)$`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return nil
	}

	var sources []string
	for _, src := range strings.Fields(m[1]) {
		if strings.HasPrefix(src, "$") {
			continue
		}
		for _, base := range []string{repoRoot, amDir} {
			p := filepath.Join(base, filepath.FromSlash(src))
			if fileExists(p) {
				sources = appendUnique(sources, relPath(repoRoot, p))
				break
			}
		}
	}
	return sources
}
