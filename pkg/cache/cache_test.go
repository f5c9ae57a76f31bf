package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileCache_RoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok=%v err=%v, want hit", ok, err)
	}
	if string(got) != "payload" {
		t.Errorf("Get(k) = %q, want payload", got)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get after Delete still hits")
	}
}

func TestFileCache_TTLExpires(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("expired entry: ok=%v err=%v, want miss", ok, err)
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.entryPath("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("corrupt entry: ok=%v err=%v, want silent miss", ok, err)
	}
	if _, err := os.Stat(c.entryPath("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry file not removed")
	}
}

func TestFileCache_Purge(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Purge(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("purged cache dir still holds %d entries", len(entries))
	}
}

func TestFileCache_ShardsEntries(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := c.entryPath("some-key")
	shard := filepath.Base(filepath.Dir(p))
	if len(shard) != 2 {
		t.Errorf("shard dir = %q, want two hex chars", shard)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("null cache: ok=%v err=%v, want permanent miss", ok, err)
	}
}

func TestScanKey_Deterministic(t *testing.T) {
	a := ScanKey("/repo", "fp1")
	b := ScanKey("/repo", "fp1")
	if a != b {
		t.Errorf("ScanKey not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "scan:") {
		t.Errorf("ScanKey = %q, want scan: prefix", a)
	}
	if c := ScanKey("/repo", "fp2"); c == a {
		t.Error("different fingerprints produced the same key")
	}
}

func TestGraphKey_DistinctNamespace(t *testing.T) {
	sk := ScanKey("/repo", "fp")
	gk := GraphKey(sk)
	if !strings.HasPrefix(gk, "graph:") {
		t.Errorf("GraphKey = %q, want graph: prefix", gk)
	}
	if gk == sk {
		t.Error("graph key collides with scan key")
	}
}
