package symbols

import (
	"strconv"

	"github.com/google/uuid"

	"loom/internal/source"
	"loom/internal/surface"
)

// GenSym produces unique labels within one namespace. The first request for
// a base returns the base itself, later ones append "#1", "#2", ...
type GenSym struct {
	Namespace string
	kind      surface.SymbolKind
	counts    map[string]int
}

// NewGenSym creates a generator. An empty namespace is replaced by a fresh
// random UUID so that symbols of independent units never compare equal.
func NewGenSym(namespace string) *GenSym {
	if namespace == "" {
		namespace = uuid.NewString()
	}
	return &GenSym{Namespace: namespace, counts: make(map[string]int)}
}

// Name returns a fresh label derived from base.
func (g *GenSym) Name(base string) string {
	n := g.counts[base]
	g.counts[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "#" + strconv.Itoa(n)
}

// Sym returns a fresh symbol tagged with the generator's namespace. Symbols
// of a unit generator are local whatever the namespace text is.
func (g *GenSym) Sym(base string, loc source.Location) *surface.Symbol {
	return &surface.Symbol{Label: g.Name(base), Namespace: g.Namespace, Kind: g.kind, Pos: loc}
}
