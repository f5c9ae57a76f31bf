package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"scan": false, "order": false, "render": false, "browse": false,
		"serve": false, "snapshot": false, "cache": false, "completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestCacheDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != appName {
		t.Errorf("cacheDir = %q, want an %s subdirectory", dir, appName)
	}
}

func TestScanCommand_ProducesModel(t *testing.T) {
	c := New(io.Discard, LogInfo)

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"uppsrc/Core/Core.upp": "description \"Core\";\n\nfile\n\tCore.cpp;\n",
		"uppsrc/Core/Core.cpp": "int main() {}\n",
	})

	m, cached, err := c.resolveModel(t.Context(), root, scanOpts{noCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("fresh scan reported as cached")
	}
	found := false
	for _, p := range m.Packages {
		if p.Name == "Core" {
			found = true
		}
	}
	if !found {
		t.Errorf("Core package missing from model: %+v", m.Packages)
	}
}
