package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// ReadJSON decodes a model document from r and validates its internal
// references: package IDs must be unique, and every assembly member list may
// only name packages present in the document. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Decoded, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if doc.Schema != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (want %d)", doc.Schema, SchemaVersion)
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("document has no model")
	}

	ids := make(map[string]bool, len(doc.Model.Packages))
	for _, p := range doc.Model.Packages {
		if p.ID == "" {
			return nil, fmt.Errorf("package %s has no id", p.Name)
		}
		if ids[p.ID] {
			return nil, fmt.Errorf("duplicate package id %s", p.ID)
		}
		ids[p.ID] = true
	}
	for _, a := range doc.Model.Assemblies {
		for _, id := range a.PackageIDs {
			if !ids[id] {
				return nil, fmt.Errorf("assembly %s references unknown package %s", a.Name, id)
			}
		}
	}
	return &Decoded{Model: doc.Model, Schema: doc.Schema}, nil
}

// Decoded is a validated import result.
type Decoded struct {
	Model  *model.Model
	Schema int
}

// ImportJSON reads and validates a model file at path.
func ImportJSON(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
