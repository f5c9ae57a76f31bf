package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/pkg/assembly"
	"github.com/repoatlas/repoatlas/pkg/cache"
	"github.com/repoatlas/repoatlas/pkg/config"
	pkgio "github.com/repoatlas/repoatlas/pkg/io"
	"github.com/repoatlas/repoatlas/pkg/model"
	"github.com/repoatlas/repoatlas/pkg/scanner"
	"github.com/repoatlas/repoatlas/pkg/store"
)

// scanCacheTTL bounds how long a cached scan stays valid. Scans are cheap
// enough that a stale-but-recent model is acceptable; --refresh bypasses it.
const scanCacheTTL = 24 * time.Hour

// scanOpts holds the flags shared by every command that needs a model.
type scanOpts struct {
	noCache     bool
	refresh     bool
	redisURL    string
	flags       []string
	evidenceDir string
}

// register adds the shared scan flags to cmd.
func (o *scanOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the scan cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "rescan even if a cached model exists")
	cmd.Flags().StringVar(&o.redisURL, "redis", "", "redis URL for a shared scan cache")
	cmd.Flags().StringSliceVar(&o.flags, "flag", nil, "active build flag for conditional descriptor dependencies (repeatable)")
	cmd.Flags().StringVar(&o.evidenceDir, "evidence", "", "directory of .var assembly configs for evidence annotations")
}

// resolveModel scans repoRoot (or loads the cached model) and returns the
// resolved repository model.
func (c *CLI) resolveModel(ctx context.Context, repoRoot string, opts scanOpts) (*model.Model, bool, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, false, fmt.Errorf("resolve path %s: %w", repoRoot, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, false, err
	}
	cfg.ActiveFlags = append(cfg.ActiveFlags, opts.flags...)
	if opts.evidenceDir != "" {
		cfg.EvidenceDir = opts.evidenceDir
	}

	scanCache, err := c.newCache(ctx, opts.noCache, opts.redisURL, cfg.CacheDir)
	if err != nil {
		return nil, false, err
	}
	defer scanCache.Close()

	fingerprint := cfg.Fingerprint()
	if cfg.EvidenceDir != "" {
		fingerprint += ";evidence=" + cfg.EvidenceDir
	}
	key := cache.ScanKey(absRoot, fingerprint)

	if !opts.refresh {
		if data, ok, err := scanCache.Get(ctx, key); err == nil && ok {
			dec, err := pkgio.ReadJSON(bytes.NewReader(data))
			if err == nil {
				c.Logger.Debugf("Using cached scan for %s", absRoot)
				return dec.Model, true, nil
			}
			c.Logger.Warnf("Discarding unreadable cache entry: %v", err)
			_ = scanCache.Delete(ctx, key)
		}
	}

	prog := newProgress(c.Logger)
	scan, err := scanner.New(cfg.ScanOptions(), c.Logger).Scan(absRoot)
	if err != nil {
		return nil, false, err
	}
	m := assembly.Resolve(scan)
	if cfg.EvidenceDir != "" {
		assembly.AttachEvidence(m, absRoot, assembly.LoadVarConfigs(cfg.EvidenceDir))
	}
	prog.done(fmt.Sprintf("Scanned %d packages in %d assemblies", len(m.Packages), len(m.Assemblies)))

	var buf bytes.Buffer
	if err := pkgio.WriteJSON(m, &buf); err == nil {
		if err := scanCache.Set(ctx, key, buf.Bytes(), scanCacheTTL); err != nil {
			c.Logger.Debugf("Cache write failed: %v", err)
		}
	}
	return m, false, nil
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts
	var output string
	var save bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a repository into a package and assembly model",
		Long: `Scan a repository tree, detect packages across build systems, resolve
assembly membership, and write the model as JSON.

Examples:
  repoatlas scan                      # scan the current directory to stdout
  repoatlas scan ~/src/upp -o upp.json
  repoatlas scan --flag GUI --flag WIN32 .
  repoatlas scan --evidence ~/.config/u++ .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			m, cached, err := c.resolveModel(cmd.Context(), root, opts)
			if err != nil {
				return err
			}

			if save {
				snap, err := saveSnapshot(cmd.Context(), m)
				if err != nil {
					return err
				}
				printInfo("Saved snapshot %s", snap.State.SnapshotID)
			}

			if err := writeModel(m, output); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Scanned %s", m.RepoName)
				printScanStats(len(m.Assemblies), len(m.Packages), len(m.Unassigned()), cached)
				printFile(output)
				printNextStep("Order dependencies", fmt.Sprintf("%s order --model %s", appName, output))
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&save, "save", false, "also store the model as a snapshot")
	return cmd
}

// saveSnapshot stores m in the default file-backed snapshot store.
func saveSnapshot(ctx context.Context, m *model.Model) (*store.Snapshot, error) {
	s, err := store.NewFileStore("")
	if err != nil {
		return nil, err
	}
	defer s.Close()

	snap := store.NewSnapshot(m)
	if err := s.Put(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// writeModel serializes m as JSON to path, or stdout when path is empty.
func writeModel(m *model.Model, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return pkgio.WriteJSON(m, out)
}

// nopCloser makes os.Stdout usable where a WriteCloser is expected.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
