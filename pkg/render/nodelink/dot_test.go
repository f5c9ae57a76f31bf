package nodelink

import (
	"strings"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/depgraph"
	"github.com/repoatlas/repoatlas/pkg/model"
)

func graphFixture() *depgraph.Graph {
	return depgraph.Build([]model.Package{
		{Name: "App", Dependencies: []string{"Core", "zlib"}},
		{Name: "Core"},
	})
}

func TestToDOT_Deterministic(t *testing.T) {
	a := ToDOT(graphFixture(), Options{})
	b := ToDOT(graphFixture(), Options{})
	if a != b {
		t.Error("two renders of the same graph differ")
	}
}

func TestToDOT_ExcludesExternalByDefault(t *testing.T) {
	dot := ToDOT(graphFixture(), Options{})
	if strings.Contains(dot, "zlib") {
		t.Errorf("external dep rendered without IncludeExternal:\n%s", dot)
	}
	if !strings.Contains(dot, `"App" -> "Core";`) {
		t.Errorf("missing App -> Core edge:\n%s", dot)
	}
}

func TestToDOT_IncludeExternal(t *testing.T) {
	dot := ToDOT(graphFixture(), Options{IncludeExternal: true})
	if !strings.Contains(dot, `"zlib" [style="rounded,filled,dashed"`) {
		t.Errorf("external dep not drawn dashed:\n%s", dot)
	}
	if !strings.Contains(dot, `"App" -> "zlib";`) {
		t.Errorf("missing App -> zlib edge:\n%s", dot)
	}
}
