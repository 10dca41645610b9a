package symbols

import (
	"testing"

	"loom/internal/source"
	"loom/internal/surface"
)

func TestGenSymFreshNames(t *testing.T) {
	gen := NewGenSym("ns")
	want := []string{"x", "x#1", "x#2"}
	for i, w := range want {
		if got := gen.Name("x"); got != w {
			t.Fatalf("call %d: got %q, want %q", i, got, w)
		}
	}
	if got := gen.Name("y"); got != "y" {
		t.Fatalf("independent base: got %q", got)
	}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := gen.Name("tmp")
		if seen[n] {
			t.Fatalf("duplicate label %q", n)
		}
		seen[n] = true
	}
}

func TestGenSymNamespace(t *testing.T) {
	a, b := NewGenSym(""), NewGenSym("")
	if a.Namespace == "" || a.Namespace == b.Namespace {
		t.Fatalf("expected distinct random namespaces, got %q and %q", a.Namespace, b.Namespace)
	}
	sym := a.Sym("x", source.Location{})
	if sym.Namespace != a.Namespace || sym.Label != "x" || !sym.IsLocal() {
		t.Fatalf("unexpected symbol %+v", sym)
	}
	if reserved := NewGenSym(surface.NamespaceGlobal).Sym("x", source.Location{}); !reserved.IsLocal() {
		t.Fatalf("unit symbols must stay local in the %q namespace: %+v", surface.NamespaceGlobal, reserved)
	}
	if helper := NewGlobals().Fresh("#while", source.Location{}); !helper.IsGlobal() {
		t.Fatalf("global table symbols must be global: %+v", helper)
	}
}

func TestRebindRedirectsToFreshLabel(t *testing.T) {
	table := NewTable(Hints{}, NewGenSym("ns"))
	root := table.Root(source.Span{})

	first := root.Rebind("x", source.Location{})
	if first.Label != "x" {
		t.Fatalf("first rebind label = %q", first.Label)
	}
	second := root.Rebind("x", source.Location{})
	if second.Label != "x#1" {
		t.Fatalf("second rebind label = %q", second.Label)
	}
	got, depth, ok := root.Resolve("x")
	if !ok || depth != 0 || got != second {
		t.Fatalf("Resolve(x) = %v, %d, %v", got, depth, ok)
	}
	if got, _, _ := root.Resolve("x#1"); got != second {
		t.Fatalf("label lookup returned %v", got)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestResolveDepthAndGlobals(t *testing.T) {
	table := NewTable(Hints{}, NewGenSym("ns"))
	root := table.Root(source.Span{})
	x := root.Rebind("x", source.Location{})
	fn := root.Child(ScopeFunction, source.Span{})
	branch := fn.Child(ScopeBranch, source.Span{})

	got, depth, ok := branch.Resolve("x")
	if !ok || got != x || depth != 2 {
		t.Fatalf("Resolve(x) = %v, %d, %v", got, depth, ok)
	}
	shadow := fn.Rebind("x", source.Location{})
	got, depth, _ = branch.Resolve("x")
	if got != shadow || depth != 1 {
		t.Fatalf("shadowed Resolve(x) = %v, %d", got, depth)
	}
	if _, _, ok := branch.Resolve("print"); ok {
		t.Fatalf("unbound name must resolve as global")
	}
	if p, ok := branch.Parent(); !ok || p.ID() != fn.ID() {
		t.Fatalf("unexpected parent")
	}
	if _, ok := root.Parent(); ok {
		t.Fatalf("root must have no parent")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRedirectTransitivity(t *testing.T) {
	table := NewTable(Hints{}, NewGenSym("ns"))
	root := table.Root(source.Span{})
	sym := &surface.Symbol{Label: "c", Namespace: "ns"}
	s := table.Scopes.Get(root.ID())
	s.set("a", Binding{Kind: BindRedirect, Target: "b"})
	s.set("b", Binding{Kind: BindRedirect, Target: "c"})
	s.set("c", Binding{Kind: BindValue, Value: sym})

	got, _, ok := root.Resolve("a")
	if !ok || got != sym {
		t.Fatalf("Resolve(a) = %v, %v; want %v", got, ok, sym)
	}
}

func TestValidateReportsDanglingRedirect(t *testing.T) {
	table := NewTable(Hints{}, nil)
	root := table.Root(source.Span{})
	table.Scopes.Get(root.ID()).set("a", Binding{Kind: BindRedirect, Target: "missing"})
	if err := table.Validate(); err == nil {
		t.Fatalf("expected dangling redirect error")
	}
}

func TestGlobalsTable(t *testing.T) {
	g := NewGlobals()
	w0 := g.Fresh("#while", source.Location{})
	w1 := g.Fresh("#while", source.Location{})
	if w0.Label != "#while" || w1.Label != "#while#1" || !w0.IsGlobal() {
		t.Fatalf("unexpected helper symbols %+v %+v", w0, w1)
	}
	g.Define(w1.Label, &surface.Lambda{Name: w1.Label})
	g.Define(w0.Label, &surface.Lambda{Name: w0.Label})
	g.Define("f", &surface.Lambda{Name: "f"})
	names := g.Names()
	if len(names) != 3 || names[0] != "#while#1" || names[2] != "f" {
		t.Fatalf("unexpected order %v", names)
	}
	if got := g.Fresh("f", source.Location{}); got.Label == "f" {
		t.Fatalf("fresh symbol collides with a definition")
	}
	g.Access("print")
	g.Access("f")
	g.Access("print")
	if acc := g.Accessed(); len(acc) != 2 || acc[0] != "f" {
		t.Fatalf("accessed = %v", acc)
	}
}
