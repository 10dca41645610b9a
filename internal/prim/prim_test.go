package prim

import "testing"

func TestOperatorTables(t *testing.T) {
	cases := []struct {
		lookup func(string) (*Primitive, bool)
		tok    string
		want   *Primitive
	}{
		{BinaryOperator, "+", Add},
		{BinaryOperator, "//", FloorDiv},
		{AugmentedOperator, "**=", Pow},
		{AugmentedOperator, "-=", Sub},
		{UnaryOperator, "not", Not},
		{CompareOperator, "not in", NotIn},
		{CompareOperator, "is not", IsNot},
	}
	for _, c := range cases {
		got, ok := c.lookup(c.tok)
		if !ok || got != c.want {
			t.Fatalf("%q: got %v (ok=%v), want %v", c.tok, got, ok, c.want)
		}
	}
	if _, ok := AugmentedOperator("="); ok {
		t.Fatalf("plain assignment must not map to an operator")
	}
	if _, ok := BinaryOperator("and"); ok {
		t.Fatalf("boolean operators are not primitives")
	}
}

func TestLookupIsInterned(t *testing.T) {
	for _, name := range Names() {
		p, ok := Lookup(name)
		if !ok || p.Name != name {
			t.Fatalf("Lookup(%q) = %v, %v", name, p, ok)
		}
	}
	if p, _ := Lookup("index"); p != Index {
		t.Fatalf("Lookup returned a copy")
	}
}
