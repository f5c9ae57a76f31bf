package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as JSON files under a root directory. Entries
// carry their own expiry; expired or corrupt files are removed on read and
// reported as misses. Safe for concurrent readers, last writer wins.
type FileCache struct {
	root string
}

// NewFileCache opens (creating if needed) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{root: dir}, nil
}

type fileEntry struct {
	Payload   []byte    `json:"payload"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry, drop it and miss.
		_ = os.Remove(c.entryPath(key))
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(c.entryPath(key))
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Payload: data, StoredAt: time.Now()}
	if ttl > 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Purge removes every entry under the cache root. Used by the cache clear
// command; the root directory itself survives.
func (c *FileCache) Purge() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// entryPath shards entries into two-hex-char subdirectories so large caches
// do not pile every file into one directory.
func (c *FileCache) entryPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.root, name[:2], name[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
