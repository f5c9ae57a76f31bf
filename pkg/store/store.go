// Package store persists scan snapshots: a resolved model plus a small
// state record (counts, timestamps) that can be listed without loading the
// full model. Backends: file (CLI default) and mongo (shared history).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// ErrNotFound is returned when no snapshot exists under the requested ID.
var ErrNotFound = errors.New("store: snapshot not found")

// State is the listing record kept alongside each stored model.
type State struct {
	SnapshotID string    `json:"snapshot_id" bson:"snapshot_id"`
	RepoName   string    `json:"repo_name" bson:"repo_name"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	Assemblies int       `json:"num_assemblies" bson:"num_assemblies"`
	Packages   int       `json:"num_packages" bson:"num_packages"`
	Unassigned int       `json:"num_unassigned" bson:"num_unassigned"`
	Unknown    int       `json:"num_unknown_paths" bson:"num_unknown_paths"`
}

// Snapshot couples a state record with the model it summarizes.
type Snapshot struct {
	State State        `json:"state" bson:"state"`
	Model *model.Model `json:"model" bson:"model"`
}

// NewSnapshot wraps a resolved model with a fresh ID and computed counts.
func NewSnapshot(m *model.Model) *Snapshot {
	return &Snapshot{
		State: State{
			SnapshotID: uuid.NewString(),
			RepoName:   m.RepoName,
			CreatedAt:  time.Now().UTC(),
			Assemblies: len(m.Assemblies),
			Packages:   len(m.Packages),
			Unassigned: len(m.Unassigned()),
			Unknown:    len(m.Unknown),
		},
		Model: m,
	}
}

// Store is the snapshot persistence interface.
type Store interface {
	// Put stores a snapshot, overwriting any snapshot with the same ID.
	Put(ctx context.Context, snap *Snapshot) error

	// Get loads a snapshot by ID. Returns [ErrNotFound] if absent.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns state records, newest first. An empty repoName matches
	// every repository.
	List(ctx context.Context, repoName string) ([]State, error)

	// Delete removes a snapshot. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}
