package depgraph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/repoatlas/repoatlas/pkg/model"
)

func pkg(name string, deps ...string) model.Package {
	return model.Package{Name: name, Dependencies: deps}
}

func TestOrder_DependenciesFirst(t *testing.T) {
	pkgs := []model.Package{
		pkg("App", "Draw", "Core"),
		pkg("Draw", "Core"),
		pkg("Core"),
	}
	ordered, err := Build(pkgs).Order()
	if err != nil {
		t.Fatal(err)
	}
	pos := map[string]int{}
	for i, name := range ordered {
		pos[name] = i
	}
	if len(ordered) != 3 {
		t.Fatalf("ordered = %v, want all 3 packages", ordered)
	}
	for _, p := range pkgs {
		for _, dep := range p.Dependencies {
			if pos[dep] >= pos[p.Name] {
				t.Errorf("%s depends on %s but order is %v", p.Name, dep, ordered)
			}
		}
	}
}

func TestOrder_Deterministic(t *testing.T) {
	pkgs := []model.Package{pkg("B"), pkg("A"), pkg("C")}
	first, err := Build(pkgs).Order()
	if err != nil {
		t.Fatal(err)
	}
	// Independent nodes come out in input order, not name order.
	if !reflect.DeepEqual(first, []string{"B", "A", "C"}) {
		t.Errorf("ordered = %v, want input order [B A C]", first)
	}
	for i := 0; i < 5; i++ {
		again, err := Build(pkgs).Order()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced %v, first run produced %v", i, again, first)
		}
	}
}

func TestOrder_ExternalDepsOmitted(t *testing.T) {
	pkgs := []model.Package{pkg("Core", "zlib", "openssl")}
	ordered, err := Build(pkgs).Order()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ordered, []string{"Core"}) {
		t.Errorf("ordered = %v, external sinks must not appear", ordered)
	}
}

func TestOrder_CycleError(t *testing.T) {
	pkgs := []model.Package{
		pkg("A", "B"),
		pkg("B", "C"),
		pkg("C", "A"),
	}
	ordered, err := Build(pkgs).Order()
	if ordered != nil {
		t.Fatalf("ordered = %v, want nil on cycle", ordered)
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
	// The cycle closes on its entry node and contains exactly A, B, C.
	c := cycleErr.Cycle
	if len(c) != 4 || c[0] != c[len(c)-1] {
		t.Fatalf("Cycle = %v, want a closed walk of length 4", c)
	}
	seen := map[string]bool{}
	for _, name := range c[:3] {
		seen[name] = true
	}
	if !seen["A"] || !seen["B"] || !seen["C"] {
		t.Errorf("Cycle = %v, want a rotation of A B C", c)
	}
}

func TestOrder_CycleBesideValidNodes(t *testing.T) {
	pkgs := []model.Package{
		pkg("Standalone"),
		pkg("X", "Y"),
		pkg("Y", "X"),
	}
	_, err := Build(pkgs).Order()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
	for _, name := range cycleErr.Cycle {
		if name == "Standalone" {
			t.Errorf("Cycle = %v includes node outside the cycle", cycleErr.Cycle)
		}
	}
}

func TestTransitive(t *testing.T) {
	pkgs := []model.Package{
		pkg("App", "Draw"),
		pkg("Draw", "Core"),
		pkg("Core", "zlib"),
		pkg("Other"),
	}
	g := Build(pkgs)

	if got, want := g.TransitiveDependencies("App"), []string{"Core", "Draw", "zlib"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TransitiveDependencies(App) = %v, want %v", got, want)
	}
	if got, want := g.TransitiveDependents("Core"), []string{"App", "Draw"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TransitiveDependents(Core) = %v, want %v", got, want)
	}
	if got := g.TransitiveDependencies("Other"); len(got) != 0 {
		t.Errorf("TransitiveDependencies(Other) = %v, want empty", got)
	}
}

func TestResolve_ReturnsPackages(t *testing.T) {
	pkgs := []model.Package{
		{Name: "App", Dir: "app", Dependencies: []string{"Core"}},
		{Name: "Core", Dir: "core"},
	}
	ordered, err := Resolve(pkgs)
	if err != nil {
		t.Fatal(err)
	}
	if len(ordered) != 2 || ordered[0].Name != "Core" || ordered[1].Name != "App" {
		t.Fatalf("ordered = %+v, want Core then App", ordered)
	}
	if ordered[0].Dir != "core" {
		t.Errorf("package fields lost in resolution: %+v", ordered[0])
	}
}
