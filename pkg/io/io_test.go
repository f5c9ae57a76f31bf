package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func sampleModel() *model.Model {
	return &model.Model{
		RepoName: "repo",
		Assemblies: []model.Assembly{
			{ID: "a1", Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative, PackageIDs: []string{"p1"}},
		},
		Packages: []model.Package{
			{ID: "p1", Name: "Core", Dir: "uppsrc/Core", RelPath: "Core", AssemblyID: "a1", BuildSystem: model.BuildNative},
		},
		PackagesDetected: []model.Package{
			{Name: "Core", Dir: "uppsrc/Core", BuildSystem: model.BuildNative},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	m := sampleModel()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := ExportJSON(m, path); err != nil {
		t.Fatal(err)
	}
	dec, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Schema != SchemaVersion {
		t.Errorf("Schema = %d, want %d", dec.Schema, SchemaVersion)
	}
	if !reflect.DeepEqual(dec.Model, m) {
		t.Errorf("round trip changed the model:\n got %+v\nwant %+v", dec.Model, m)
	}
}

func TestWriteJSON_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := WriteJSON(sampleModel(), &a); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(sampleModel(), &b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two exports of the same model differ")
	}
}

func TestReadJSON_RejectsDuplicateIDs(t *testing.T) {
	doc := `{"schema_version":1,"model":{"repo_name":"r","assemblies":[],
		"packages":[{"package_id":"p","name":"a","dir_relpath":"a","build_system":"native"},
		            {"package_id":"p","name":"b","dir_relpath":"b","build_system":"native"}]}}`
	if _, err := ReadJSON(strings.NewReader(doc)); err == nil {
		t.Error("duplicate package ids accepted")
	}
}

func TestReadJSON_RejectsDanglingMember(t *testing.T) {
	doc := `{"schema_version":1,"model":{"repo_name":"r",
		"assemblies":[{"assembly_id":"a","name":"x","root_relpath":".","kind":"root","package_ids":["ghost"]}],
		"packages":[]}}`
	if _, err := ReadJSON(strings.NewReader(doc)); err == nil {
		t.Error("assembly referencing a missing package accepted")
	}
}

func TestReadJSON_RejectsWrongSchema(t *testing.T) {
	doc := `{"schema_version":99,"model":{"repo_name":"r","assemblies":[],"packages":[]}}`
	if _, err := ReadJSON(strings.NewReader(doc)); err == nil {
		t.Error("unknown schema version accepted")
	}
}
