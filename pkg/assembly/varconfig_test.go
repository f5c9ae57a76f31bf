package assembly

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func TestParseVarConfig(t *testing.T) {
	cfg := ParseVarConfig("MyNest", `
// assembly config
UPP = "/opt/upp/uppsrc;/opt/upp/bazaar";
OUTPUT = "/tmp/out";
_all = "0";
garbage line here
`)
	if cfg.Name != "MyNest" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if want := []string{"/opt/upp/uppsrc", "/opt/upp/bazaar"}; !reflect.DeepEqual(cfg.Paths, want) {
		t.Errorf("Paths = %v, want %v", cfg.Paths, want)
	}
	if cfg.Vars["OUTPUT"] != "/tmp/out" {
		t.Errorf("OUTPUT = %q", cfg.Vars["OUTPUT"])
	}
	if len(cfg.UnparsedLines) != 1 {
		t.Errorf("UnparsedLines = %v, want the garbage line kept", cfg.UnparsedLines)
	}
}

func TestAttachEvidence(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "uppsrc"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfgDir := t.TempDir()
	varContent := `UPP = "` + filepath.Join(root, "uppsrc") + `";`
	if err := os.WriteFile(filepath.Join(cfgDir, "nest.var"), []byte(varContent), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &model.Model{
		Assemblies: []model.Assembly{
			{Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative},
			{Name: "other", Root: "other", Kind: model.KindNative},
		},
	}
	AttachEvidence(m, root, LoadVarConfigs(cfgDir))

	if want := []string{"found in nest.var"}; !reflect.DeepEqual(m.Assemblies[0].Evidence, want) {
		t.Errorf("uppsrc Evidence = %v, want %v", m.Assemblies[0].Evidence, want)
	}
	if len(m.Assemblies[1].Evidence) != 0 {
		t.Errorf("other Evidence = %v, want none", m.Assemblies[1].Evidence)
	}
}

func TestAttachEvidence_NeverDuplicates(t *testing.T) {
	root := t.TempDir()
	cfg := &VarConfig{Name: "nest", Paths: []string{root, root}}
	m := &model.Model{
		Assemblies: []model.Assembly{{Name: "r", Root: ".", Kind: model.KindRoot}},
	}
	AttachEvidence(m, root, []*VarConfig{cfg})
	if len(m.Assemblies[0].Evidence) != 1 {
		t.Errorf("Evidence = %v, want a single reference", m.Assemblies[0].Evidence)
	}
}
