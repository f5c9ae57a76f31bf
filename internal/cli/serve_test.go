package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func apiModel() *model.Model {
	return &model.Model{
		RepoName: "repo",
		Assemblies: []model.Assembly{
			{ID: "a1", Name: "uppsrc", Root: "uppsrc", Kind: model.KindNative, PackageIDs: []string{"p1", "p2"}},
		},
		Packages: []model.Package{
			{ID: "p1", Name: "Core", Dir: "uppsrc/Core", AssemblyID: "a1", BuildSystem: model.BuildNative},
			{ID: "p2", Name: "Draw", Dir: "uppsrc/Draw", AssemblyID: "a1", BuildSystem: model.BuildNative,
				Dependencies: []string{"Core"}},
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Healthz(t *testing.T) {
	rec := get(t, newAPIHandler(apiModel()), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["repo"] != "repo" {
		t.Errorf("repo = %q", body["repo"])
	}
}

func TestAPI_PackageByID(t *testing.T) {
	h := newAPIHandler(apiModel())

	rec := get(t, h, "/packages/p2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p model.Package
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Draw" {
		t.Errorf("Name = %q, want Draw", p.Name)
	}

	if rec := get(t, h, "/packages/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestAPI_Order(t *testing.T) {
	rec := get(t, newAPIHandler(apiModel()), "/order")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Order []string `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Order) != 2 || body.Order[0] != "Core" || body.Order[1] != "Draw" {
		t.Errorf("order = %v, want [Core Draw]", body.Order)
	}
}

func TestAPI_OrderCycleConflict(t *testing.T) {
	m := apiModel()
	m.Packages[0].Dependencies = []string{"Draw"}

	rec := get(t, newAPIHandler(m), "/order")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body struct {
		Cycle []string `json:"cycle"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Cycle) == 0 {
		t.Error("cycle body empty")
	}
}
