// Package cli implements the repoatlas command-line interface.
//
// Commands scan repositories into canonical models, compute dependency
// orders, render dependency graphs, browse results interactively, and serve
// a read-only model API. All commands support --verbose (-v) for debug-level
// logging; loggers travel on the CLI struct so library packages can report
// progress without global state.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/buildinfo"
	"github.com/repoatlas/repoatlas/pkg/cache"
)

// appName is used for the binary name and config/cache directories.
const appName = "repoatlas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Repoatlas maps repositories into packages and assemblies",
		Long:         `Repoatlas scans a repository tree, detects packages across build systems (native descriptors, CMake, Make, Autotools, Maven, Visual Studio), groups them into assemblies, and produces a deterministic model with stable identifiers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache picks the scan cache backend: null when disabled, redis when a
// URL is given, otherwise the on-disk cache.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisURL, dirOverride string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		return cache.NewRedisCache(ctx, redisURL, appName+":")
	}
	dir := dirOverride
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using the XDG convention
// (~/.cache/repoatlas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
