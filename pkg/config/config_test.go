package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load on empty dir = %+v, want defaults", cfg)
	}
}

func TestLoad_OverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	content := `
skip_dirs = ["vendor"]
active_flags = ["GUI", "WIN32"]
evidence_dir = "/opt/upp"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"vendor"}; !reflect.DeepEqual(cfg.SkipDirs, want) {
		t.Errorf("SkipDirs = %v, want %v", cfg.SkipDirs, want)
	}
	if want := []string{"GUI", "WIN32"}; !reflect.DeepEqual(cfg.ActiveFlags, want) {
		t.Errorf("ActiveFlags = %v, want %v", cfg.ActiveFlags, want)
	}
	if cfg.EvidenceDir != "/opt/upp" {
		t.Errorf("EvidenceDir = %q", cfg.EvidenceDir)
	}
	// Keys absent from the file keep their defaults.
	if !reflect.DeepEqual(cfg.SourceExtensions, Default().SourceExtensions) {
		t.Errorf("SourceExtensions = %v, want defaults kept", cfg.SourceExtensions)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("skip_dirs = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted a malformed config file")
	}
}

func TestFingerprint_OrderInsensitive(t *testing.T) {
	a := Config{ActiveFlags: []string{"GUI", "WIN32"}}
	b := Config{ActiveFlags: []string{"WIN32", "GUI"}}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("fingerprint depends on flag order")
	}
	c := Config{ActiveFlags: []string{"GUI"}}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different flag sets share a fingerprint")
	}
}
