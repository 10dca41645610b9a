package surface

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
)

func local(label string) *Symbol {
	return &Symbol{Label: label, Namespace: "unit"}
}

func builtin(label string) *Symbol {
	return &Symbol{Label: label, Namespace: NamespaceBuiltin, Kind: SymBuiltin}
}

func TestStringRendering(t *testing.T) {
	x := local("x")
	x1 := local("x#1")
	e := &LetRec{
		Bindings: []Binding{{Sym: x, Value: &Literal{Value: int64(1)}}},
		Body: &LetRec{
			Bindings: []Binding{{Sym: x1, Value: NewApply(builtin("add"), x, &Literal{Value: int64(2)})}},
			Body:     x1,
		},
	}
	want := "(letrec ((x 1)) (letrec ((x#1 (add x 2))) x#1))"
	if got := String(e); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestLiteralString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{true, "True"},
		{false, "False"},
		{int64(-3), "-3"},
		{float64(2), "2.0"},
		{1.5, "1.5"},
		{"a\"b", `"a\"b"`},
	}
	for _, c := range cases {
		if got := LiteralString(c.in); got != c.want {
			t.Fatalf("LiteralString(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFreeVarsRespectsBinders(t *testing.T) {
	a, b, c := local("a"), local("b"), local("c")
	// (lambda (a) (letrec ((b (add a c))) (tuple b c g)))
	e := &Lambda{
		Params: []*Symbol{a},
		Body: &LetRec{
			Bindings: []Binding{{Sym: b, Value: NewApply(builtin("add"), a, c)}},
			Body:     NewTuple(b, c, &Symbol{Label: "g", Namespace: NamespaceGlobal, Kind: SymGlobal}),
		},
	}
	got := FreeVars(e)
	if len(got) != 1 || got[0].Label != "c" {
		t.Fatalf("FreeVars = %s", spew.Sdump(got))
	}
	if IsClosed(e) {
		t.Fatalf("expected open expression")
	}
	closed := &Lambda{Params: []*Symbol{a, c}, Body: e.Body}
	if !IsClosed(closed) {
		t.Fatalf("expected closed expression, free: %s", spew.Sdump(FreeVars(closed)))
	}
}

func TestFreeVarsLetRecIsSimultaneous(t *testing.T) {
	f, g := local("f"), local("g")
	e := &LetRec{
		Bindings: []Binding{
			{Sym: f, Value: &Lambda{Body: NewApply(g)}},
			{Sym: g, Value: &Lambda{Body: NewApply(f)}},
		},
		Body: f,
	}
	if fv := FreeVars(e); len(fv) != 0 {
		t.Fatalf("unexpected free vars: %s", spew.Sdump(fv))
	}
}

func TestWalkOrder(t *testing.T) {
	e := &If{
		Cond: local("c"),
		Then: &Begin{Stmts: []Expr{local("a"), local("b")}},
		Else: NewTuple(),
	}
	var labels []string
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Symbol); ok {
			labels = append(labels, s.Label)
		}
		return true
	})
	if diff := pretty.Compare(labels, []string{"c", "a", "b"}); diff != "" {
		t.Fatalf("walk order mismatch (-got +want):\n%s", diff)
	}
}

func TestFprintIndents(t *testing.T) {
	e := &If{Cond: local("c"), Then: &Literal{Value: int64(1)}, Else: &Literal{Value: int64(2)}}
	var buf bytes.Buffer
	if err := Fprint(&buf, e); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 || lines[1] != "  1" || lines[2] != "  2)" {
		t.Fatalf("unexpected layout:\n%s", buf.String())
	}
}

func TestGlobalRefs(t *testing.T) {
	g := func(l string) *Symbol { return &Symbol{Label: l, Namespace: NamespaceGlobal, Kind: SymGlobal} }
	e := &Lambda{
		Params: []*Symbol{local("x")},
		Body: &If{
			Cond: NewApply(g("pred"), local("x")),
			Then: NewApply(g("#while"), local("x")),
			Else: NewApply(builtin("add"), g("pred"), &Lambda{Body: g("other")}),
		},
	}
	if diff := pretty.Compare(GlobalRefs(e), []string{"#while", "other", "pred"}); diff != "" {
		t.Fatalf("GlobalRefs mismatch (-got +want):\n%s", diff)
	}
}

func TestKindIgnoresNamespaceText(t *testing.T) {
	// a unit may pick "global" or "builtin" as the namespace of its locals
	x := &Symbol{Label: "x", Namespace: NamespaceGlobal}
	y := &Symbol{Label: "y", Namespace: NamespaceBuiltin}
	if !x.IsLocal() || x.IsGlobal() || !y.IsLocal() || y.IsBuiltin() {
		t.Fatalf("kind taken from namespace: x=%+v y=%+v", x, y)
	}
	e := NewTuple(x, y)
	if got := FreeVars(e); len(got) != 2 {
		t.Fatalf("FreeVars = %s", spew.Sdump(got))
	}
	if refs := GlobalRefs(e); len(refs) != 0 {
		t.Fatalf("GlobalRefs = %v", refs)
	}
	glob := &Symbol{Label: "x", Namespace: NamespaceGlobal, Kind: SymGlobal}
	if x.Same(glob) {
		t.Fatalf("a local and a global with the same label and namespace are different bindings")
	}
}
