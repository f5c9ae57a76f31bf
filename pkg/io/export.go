package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/repoatlas/repoatlas/pkg/model"
)

// SchemaVersion tags exported documents so a future reader can refuse or
// migrate old files.
const SchemaVersion = 1

type document struct {
	Schema int          `json:"schema_version"`
	Model  *model.Model `json:"model"`
}

// WriteJSON encodes a resolved model as indented JSON on w. Output is
// byte-identical for equal models: the model's own ordering is already
// deterministic and the encoder adds nothing nondeterministic.
func WriteJSON(m *model.Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Schema: SchemaVersion, Model: m}); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// ExportJSON writes the model to a file at path, a convenience wrapper
// around [WriteJSON].
func ExportJSON(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}
