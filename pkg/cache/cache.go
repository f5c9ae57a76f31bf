// Package cache stores serialized scan models keyed by repository path and
// scan options, so repeated scans of an unchanged tree can skip the walk.
// Backends: file (default for CLI usage), redis (shared across machines),
// null (caching disabled).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for cache operations.
var (
	// ErrNotFound indicates the key does not exist in the cache.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed indicates the cache was used after Close.
	ErrClosed = errors.New("cache: closed")
)

// Cache is the minimal store the scanner needs: byte payloads under string
// keys with an optional TTL. A miss is (nil, false, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// key builds a namespaced cache key from a prefix and its identifying parts.
// Format: "prefix:hex-sha256" so keys stay filesystem- and redis-safe no
// matter what the parts contain.
func key(prefix string, parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(h.Sum(nil)))
}

// ScanKey is the cache key for a scan of repoRoot under an options
// fingerprint. The fingerprint must cover everything that changes scan
// output (skip dirs, extensions, active flags).
func ScanKey(repoRoot, optionsFingerprint string) string {
	return key("scan", repoRoot, optionsFingerprint)
}

// GraphKey is the cache key for a dependency-order result over a scan.
func GraphKey(scanKey string) string {
	return key("graph", scanKey)
}

// Fingerprint hashes an arbitrary serialized value, for use as a ScanKey
// options fingerprint.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
