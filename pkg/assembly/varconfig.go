package assembly

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// VarConfig is one parsed IDE-style .var assembly-configuration file. The
// format is tolerant key = "value"; lines, with the UPP key holding a
// semicolon-separated path list:
//
//	UPP = "/path/to/assembly1;/path/to/assembly2";
//	OUTPUT = "/path/to/output";
type VarConfig struct {
	Name          string // file name without the .var suffix
	File          string
	Vars          map[string]string
	Paths         []string // entries of the UPP path list
	UnparsedLines []string
}

var varLineRe = regexp.MustCompile(`^(\w+)\s*=\s*"([^"]*)"\s*;?`)

// ParseVarConfig parses .var content. Parsing never fails; unrecognized
// lines are preserved.
func ParseVarConfig(name, content string) *VarConfig {
	cfg := &VarConfig{Name: name, Vars: make(map[string]string)}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		m := varLineRe.FindStringSubmatch(line)
		if m == nil {
			cfg.UnparsedLines = append(cfg.UnparsedLines, line)
			continue
		}
		cfg.Vars[m[1]] = m[2]
	}
	for _, p := range strings.Split(cfg.Vars["UPP"], ";") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.Paths = append(cfg.Paths, p)
		}
	}
	return cfg
}

// LoadVarConfigs reads every .var file in dir, sorted by name. A missing
// directory yields no configs; an unreadable file is skipped.
func LoadVarConfigs(dir string) []*VarConfig {
	matches, err := filepath.Glob(filepath.Join(dir, "*.var"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)

	var configs []*VarConfig
	for _, file := range matches {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), ".var")
		cfg := ParseVarConfig(name, string(data))
		cfg.File = file
		configs = append(configs, cfg)
	}
	return configs
}

// AttachEvidence annotates assemblies whose root is related to a configured
// path (one contains the other) with a "found in <file>.var" reference.
// Evidence is informational only and never changes membership or IDs.
func AttachEvidence(m *model.Model, repoRoot string, configs []*VarConfig) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return
	}
	for _, cfg := range configs {
		ref := "found in " + cfg.Name + ".var"
		for _, p := range cfg.Paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				continue
			}
			if _, err := os.Stat(abs); err != nil {
				continue
			}
			for i := range m.Assemblies {
				a := &m.Assemblies[i]
				asmAbs := absRoot
				if a.Root != "." {
					asmAbs = filepath.Join(absRoot, filepath.FromSlash(a.Root))
				}
				if pathsRelated(abs, asmAbs) && !containsString(a.Evidence, ref) {
					a.Evidence = append(a.Evidence, ref)
				}
			}
		}
	}
}

// pathsRelated reports whether one absolute path contains the other.
func pathsRelated(a, b string) bool {
	return isPrefixPath(a, b) || isPrefixPath(b, a)
}

func isPrefixPath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
