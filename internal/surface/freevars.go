package surface

import "sort"

// FreeVars returns the local symbols referenced by e that no enclosing
// Lambda parameter or LetRec binding inside e introduces. Global and builtin
// symbols are never free. The result is sorted by label and deduplicated.
func FreeVars(e Expr) []*Symbol {
	fv := freeVars{seen: make(map[symKey]*Symbol)}
	fv.visit(e, nil)
	out := make([]*Symbol, 0, len(fv.seen))
	for _, s := range fv.seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Namespace < out[j].Namespace
	})
	return out
}

// IsClosed reports whether e has no free local symbols.
func IsClosed(e Expr) bool {
	return len(FreeVars(e)) == 0
}

type symKey struct {
	label, ns string
	kind      SymbolKind
}

func keyOf(s *Symbol) symKey { return symKey{s.Label, s.Namespace, s.Kind} }

type freeVars struct {
	seen map[symKey]*Symbol
}

// bound is a persistent linked set; each binder pushes a frame.
type bound struct {
	names  map[symKey]struct{}
	parent *bound
}

func (b *bound) has(k symKey) bool {
	for ; b != nil; b = b.parent {
		if _, ok := b.names[k]; ok {
			return true
		}
	}
	return false
}

func push(parent *bound, syms ...*Symbol) *bound {
	names := make(map[symKey]struct{}, len(syms))
	for _, s := range syms {
		names[keyOf(s)] = struct{}{}
	}
	return &bound{names: names, parent: parent}
}

func (fv *freeVars) visit(e Expr, env *bound) {
	switch n := e.(type) {
	case nil:
	case *Symbol:
		if !n.IsLocal() {
			return
		}
		k := keyOf(n)
		if env.has(k) {
			return
		}
		if _, ok := fv.seen[k]; !ok {
			fv.seen[k] = n
		}
	case *Lambda:
		fv.visit(n.Body, push(env, n.Params...))
	case *LetRec:
		syms := make([]*Symbol, 0, len(n.Bindings))
		for _, b := range n.Bindings {
			syms = append(syms, b.Sym)
		}
		inner := push(env, syms...)
		for _, b := range n.Bindings {
			fv.visit(b.Value, inner)
		}
		fv.visit(n.Body, inner)
	default:
		for _, c := range Children(e) {
			fv.visit(c, env)
		}
	}
}

// GlobalRefs returns the labels of the global symbols referenced anywhere in
// e, sorted and deduplicated.
func GlobalRefs(e Expr) []string {
	seen := make(map[string]struct{})
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Symbol); ok && s.IsGlobal() {
			seen[s.Label] = struct{}{}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
