package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func testModel(name string) *model.Model {
	return &model.Model{
		RepoName: name,
		Assemblies: []model.Assembly{
			{ID: "a1", Name: name, Root: ".", Kind: model.KindRoot, PackageIDs: []string{"p1"}},
		},
		Packages: []model.Package{
			{ID: "p1", Name: "Core", Dir: "Core", RelPath: "Core", AssemblyID: "a1", BuildSystem: model.BuildNative},
			{ID: "p2", Name: "loose", Dir: "loose", RelPath: "loose", BuildSystem: model.BuildMake},
		},
		Unknown: []model.UnknownPath{{Path: "stray.txt", Kind: "unknown"}},
	}
}

func TestNewSnapshot_Counts(t *testing.T) {
	snap := NewSnapshot(testModel("repo"))
	if snap.State.SnapshotID == "" {
		t.Error("SnapshotID empty")
	}
	if snap.State.RepoName != "repo" {
		t.Errorf("RepoName = %q", snap.State.RepoName)
	}
	if snap.State.Assemblies != 1 || snap.State.Packages != 2 {
		t.Errorf("counts = %d assemblies, %d packages", snap.State.Assemblies, snap.State.Packages)
	}
	if snap.State.Unassigned != 1 {
		t.Errorf("Unassigned = %d, want 1 (p2 has no assembly)", snap.State.Unassigned)
	}
	if snap.State.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", snap.State.Unknown)
	}
}

func TestFileStore_PutGetDelete(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	snap := NewSnapshot(testModel("repo"))
	if err := s.Put(ctx, snap); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, snap.State.SnapshotID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Model.RepoName != "repo" || len(got.Model.Packages) != 2 {
		t.Errorf("loaded model = %+v", got.Model)
	}

	if err := s.Delete(ctx, snap.State.SnapshotID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, snap.State.SnapshotID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	// Deleting again is fine.
	if err := s.Delete(ctx, snap.State.SnapshotID); err != nil {
		t.Errorf("second Delete = %v", err)
	}
}

func TestFileStore_ListNewestFirstFiltered(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	old := NewSnapshot(testModel("alpha"))
	old.State.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := NewSnapshot(testModel("alpha"))
	recent.State.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	other := NewSnapshot(testModel("beta"))
	for _, snap := range []*Snapshot{old, recent, other} {
		if err := s.Put(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	states, err := s.List(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 {
		t.Fatalf("List(alpha) = %d states, want 2", len(states))
	}
	if states[0].SnapshotID != recent.State.SnapshotID {
		t.Errorf("first listed = %s, want the newest", states[0].SnapshotID)
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("List(\"\") = %d states, want 3", len(all))
	}
}
