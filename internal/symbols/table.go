package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/source"
	"loom/internal/surface"
)

// Hints provide optional capacity suggestions for the table arena.
type Hints struct{ Scopes uint }

// maxRedirects bounds redirect chains; Rebind never produces chains longer
// than one hop, anything beyond this is a cycle.
const maxRedirects = 64

// Table aggregates the scope arena and the unit-wide symbol generator.
type Table struct {
	Scopes *Scopes
	Gen    *GenSym
}

// NewTable builds a fresh table. A nil generator gets a UUID namespace.
func NewTable(h Hints, gen *GenSym) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	if gen == nil {
		gen = NewGenSym("")
	}
	return &Table{
		Scopes: NewScopes(scopeCap),
		Gen:    gen,
	}
}

// Root allocates a parentless scope.
func (t *Table) Root(span source.Span) Env {
	return Env{t: t, id: t.Scopes.New(ScopeUnit, NoScopeID, span)}
}

// Env returns a handle for an existing scope.
func (t *Table) Env(id ScopeID) Env {
	return Env{t: t, id: id}
}

// Resolve looks name up starting at scope and walking towards the root.
// depth is the number of parent hops to the scope holding the final binding:
// 0 means the name is local. Redirects are followed from the scope where
// they were found. ok is false when the root is reached, i.e. the name is
// global.
func (t *Table) Resolve(scope ScopeID, name string) (sym *surface.Symbol, depth int, ok bool) {
	hops := 0
	for id := scope; id.IsValid(); {
		s := t.Scopes.Get(id)
		if s == nil {
			return nil, 0, false
		}
		b, found := s.Bindings[name]
		if !found {
			id = s.Parent
			depth++
			continue
		}
		if b.Kind == BindValue {
			return b.Value, depth, true
		}
		hops++
		if hops > maxRedirects {
			return nil, 0, false
		}
		name = b.Target
	}
	return nil, 0, false
}

// Bind maps name directly onto sym in scope.
func (t *Table) Bind(scope ScopeID, name string, sym *surface.Symbol) {
	if s := t.Scopes.Get(scope); s != nil {
		s.set(name, Binding{Kind: BindValue, Value: sym})
	}
}

// Rebind allocates a fresh symbol for base and installs base -> label ->
// symbol in scope. When the fresh label equals base the direct binding
// replaces the redirect.
func (t *Table) Rebind(scope ScopeID, base string, loc source.Location) *surface.Symbol {
	sym := t.Gen.Sym(base, loc)
	s := t.Scopes.Get(scope)
	if s == nil {
		return sym
	}
	s.set(base, Binding{Kind: BindRedirect, Target: sym.Label})
	s.set(sym.Label, Binding{Kind: BindValue, Value: sym})
	return sym
}

// Env is a lightweight handle on one scope of a Table.
type Env struct {
	t  *Table
	id ScopeID
}

// ID returns the scope handle.
func (e Env) ID() ScopeID { return e.id }

// Table returns the owning table.
func (e Env) Table() *Table { return e.t }

// Child allocates a scope nested in e.
func (e Env) Child(kind ScopeKind, span source.Span) Env {
	return Env{t: e.t, id: e.t.Scopes.New(kind, e.id, span)}
}

// Parent returns the enclosing scope handle; ok is false at the root.
func (e Env) Parent() (Env, bool) {
	s := e.t.Scopes.Get(e.id)
	if s == nil || !s.Parent.IsValid() {
		return Env{}, false
	}
	return Env{t: e.t, id: s.Parent}, true
}

func (e Env) Resolve(name string) (*surface.Symbol, int, bool) {
	return e.t.Resolve(e.id, name)
}

func (e Env) Bind(name string, sym *surface.Symbol) { e.t.Bind(e.id, name, sym) }

func (e Env) Rebind(base string, loc source.Location) *surface.Symbol {
	return e.t.Rebind(e.id, base, loc)
}

// Fresh returns a new symbol without binding it.
func (e Env) Fresh(base string, loc source.Location) *surface.Symbol {
	return e.t.Gen.Sym(base, loc)
}
