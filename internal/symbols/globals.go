package symbols

import (
	"sort"

	"loom/internal/source"
	"loom/internal/surface"
)

// Globals is the ordered table of definitions a unit registers globally:
// the entry point itself and every generated loop helper.
type Globals struct {
	gen      *GenSym
	order    []string
	defs     map[string]*surface.Lambda
	accessed map[string]struct{}
}

// NewGlobals creates an empty table whose generator uses the global namespace.
func NewGlobals() *Globals {
	gen := NewGenSym(surface.NamespaceGlobal)
	gen.kind = surface.SymGlobal
	return &Globals{
		gen:      gen,
		defs:     make(map[string]*surface.Lambda),
		accessed: make(map[string]struct{}),
	}
}

// Fresh returns a new global symbol derived from base ("#while", "#while#1").
func (g *Globals) Fresh(base string, loc source.Location) *surface.Symbol {
	return g.gen.Sym(base, loc)
}

// Define stores lam under name, replacing an earlier definition in place.
func (g *Globals) Define(name string, lam *surface.Lambda) {
	if _, ok := g.defs[name]; !ok {
		g.order = append(g.order, name)
		// keep the generator from handing name out again
		if g.gen.counts[name] == 0 {
			g.gen.counts[name] = 1
		}
	}
	g.defs[name] = lam
}

// Lookup returns the definition registered under name.
func (g *Globals) Lookup(name string) (*surface.Lambda, bool) {
	lam, ok := g.defs[name]
	return lam, ok
}

// Names lists definitions in registration order.
func (g *Globals) Names() []string {
	return append([]string(nil), g.order...)
}

// Len reports the number of definitions.
func (g *Globals) Len() int { return len(g.order) }

// Access records a reference to a global name.
func (g *Globals) Access(name string) {
	g.accessed[name] = struct{}{}
}

// Accessed returns every referenced global name, sorted.
func (g *Globals) Accessed() []string {
	out := make([]string, 0, len(g.accessed))
	for n := range g.accessed {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
