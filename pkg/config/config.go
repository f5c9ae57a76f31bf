// Package config loads scan options from a .repoatlas.toml file at the
// repository root, falling back to built-in defaults when the file is
// absent. Only keys present in the file override defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/repoatlas/repoatlas/pkg/scanner"
)

// FileName is the per-repository config file looked up at the scan root.
const FileName = ".repoatlas.toml"

// Config mirrors the scan-affecting knobs of scanner.Options plus the
// optional IDE assembly-config directory for evidence annotations.
type Config struct {
	SkipDirs             []string `toml:"skip_dirs"`
	SourceExtensions     []string `toml:"source_extensions"`
	DescriptorExtensions []string `toml:"descriptor_extensions"`
	ActiveFlags          []string `toml:"active_flags"`

	// EvidenceDir holds .var assembly configs; empty disables evidence.
	EvidenceDir string `toml:"evidence_dir"`

	// CacheDir overrides the default on-disk cache location.
	CacheDir string `toml:"cache_dir"`
}

// Default returns the built-in configuration, matching scanner defaults.
func Default() Config {
	opts := scanner.DefaultOptions()
	return Config{
		SkipDirs:             opts.SkipDirs,
		SourceExtensions:     opts.SourceExtensions,
		DescriptorExtensions: opts.DescriptorExtensions,
	}
}

// Load reads .repoatlas.toml from repoRoot. A missing file returns the
// defaults; a malformed file is an error (silently mis-scanning a configured
// repo is worse than failing).
func Load(repoRoot string) (Config, error) {
	cfg := Default()
	path := filepath.Join(repoRoot, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", FileName, err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", FileName, err)
	}
	if file.SkipDirs != nil {
		cfg.SkipDirs = file.SkipDirs
	}
	if file.SourceExtensions != nil {
		cfg.SourceExtensions = file.SourceExtensions
	}
	if file.DescriptorExtensions != nil {
		cfg.DescriptorExtensions = file.DescriptorExtensions
	}
	if file.ActiveFlags != nil {
		cfg.ActiveFlags = file.ActiveFlags
	}
	if file.EvidenceDir != "" {
		cfg.EvidenceDir = file.EvidenceDir
	}
	if file.CacheDir != "" {
		cfg.CacheDir = file.CacheDir
	}
	return cfg, nil
}

// ScanOptions converts the config into scanner options.
func (c Config) ScanOptions() scanner.Options {
	return scanner.Options{
		SkipDirs:             c.SkipDirs,
		SourceExtensions:     c.SourceExtensions,
		DescriptorExtensions: c.DescriptorExtensions,
		ActiveFlags:          c.ActiveFlags,
	}
}

// Fingerprint is a stable serialization of every scan-affecting field, used
// as the cache-key component for scan results. Slices are sorted so option
// order does not change the fingerprint.
func (c Config) Fingerprint() string {
	join := func(s []string) string {
		out := append([]string(nil), s...)
		sort.Strings(out)
		return strings.Join(out, ",")
	}
	return strings.Join([]string{
		"skip=" + join(c.SkipDirs),
		"src=" + join(c.SourceExtensions),
		"desc=" + join(c.DescriptorExtensions),
		"flags=" + join(c.ActiveFlags),
	}, ";")
}
