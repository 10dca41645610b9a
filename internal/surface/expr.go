// Package surface holds the closed functional expression forms produced by the
// lowering pass: symbol references, literals, conditionals, simultaneous
// bindings, function literals, applications, sequencing and tuples.
//
// Values are plain trees. Nothing in this package resolves names; a Symbol
// is identified by its label and namespace only.
package surface

import (
	"loom/internal/source"
)

// Namespaces global and builtin symbols are displayed with.
const (
	NamespaceGlobal  = "global"
	NamespaceBuiltin = "builtin"
)

// SymbolKind says where a symbol is resolved. The namespace string never
// decides it: a unit may use any namespace for its locals.
type SymbolKind uint8

const (
	SymLocal SymbolKind = iota
	SymGlobal
	SymBuiltin
)

// Expr is implemented by every surface form.
type Expr interface {
	Loc() source.Location
	exprNode()
}

// Symbol references a value by label. Locally generated symbols carry the
// namespace of their compilation unit.
type Symbol struct {
	Label     string
	Namespace string
	Kind      SymbolKind
	Pos       source.Location
}

// GlobalSym references name in the unit's global table.
func GlobalSym(name string, loc source.Location) *Symbol {
	return &Symbol{Label: name, Namespace: NamespaceGlobal, Kind: SymGlobal, Pos: loc}
}

// BuiltinSym references the primitive operation name.
func BuiltinSym(name string, loc source.Location) *Symbol {
	return &Symbol{Label: name, Namespace: NamespaceBuiltin, Kind: SymBuiltin, Pos: loc}
}

// Literal is a constant: int64, float64, string, bool or nil (None).
type Literal struct {
	Value any
	Pos   source.Location
}

// If is a conditional expression; both arms are always present.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
	Pos  source.Location
}

// Binding pairs a symbol with the value it is bound to.
type Binding struct {
	Sym   *Symbol
	Value Expr
}

// LetRec binds all of Bindings simultaneously, then evaluates Body.
type LetRec struct {
	Bindings []Binding
	Body     Expr
	Pos      source.Location
}

// Lambda is a function literal. Name is informational only.
type Lambda struct {
	Name   string
	Params []*Symbol
	Body   Expr
	Pos    source.Location
}

// Apply applies Fn to Args.
type Apply struct {
	Fn   Expr
	Args []Expr
	Pos  source.Location
}

// Begin evaluates Stmts in order; the value is the last one.
type Begin struct {
	Stmts []Expr
	Pos   source.Location
}

// Tuple builds a tuple of Elems.
type Tuple struct {
	Elems []Expr
	Pos   source.Location
}

func (e *Symbol) Loc() source.Location  { return e.Pos }
func (e *Literal) Loc() source.Location { return e.Pos }
func (e *If) Loc() source.Location      { return e.Pos }
func (e *LetRec) Loc() source.Location  { return e.Pos }
func (e *Lambda) Loc() source.Location  { return e.Pos }
func (e *Apply) Loc() source.Location   { return e.Pos }
func (e *Begin) Loc() source.Location   { return e.Pos }
func (e *Tuple) Loc() source.Location   { return e.Pos }

func (*Symbol) exprNode()  {}
func (*Literal) exprNode() {}
func (*If) exprNode()      {}
func (*LetRec) exprNode()  {}
func (*Lambda) exprNode()  {}
func (*Apply) exprNode()   {}
func (*Begin) exprNode()   {}
func (*Tuple) exprNode()   {}

// IsGlobal reports whether the symbol refers to the unit's global table.
func (e *Symbol) IsGlobal() bool { return e.Kind == SymGlobal }

// IsBuiltin reports whether the symbol names a primitive operation.
func (e *Symbol) IsBuiltin() bool { return e.Kind == SymBuiltin }

// IsLocal reports whether the symbol was generated inside a unit scope.
func (e *Symbol) IsLocal() bool { return e.Kind == SymLocal }

// Same reports whether two symbols denote the same binding.
func (e *Symbol) Same(other *Symbol) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Kind == other.Kind && e.Label == other.Label && e.Namespace == other.Namespace
}

// NewApply is a shorthand used heavily by the lowering pass.
func NewApply(fn Expr, args ...Expr) *Apply {
	return &Apply{Fn: fn, Args: args}
}

// NewTuple builds a tuple from elems.
func NewTuple(elems ...Expr) *Tuple {
	return &Tuple{Elems: elems}
}

// Children returns the direct sub-expressions of e in evaluation order.
// Lambda parameters and LetRec binding symbols are not included.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *If:
		return []Expr{n.Cond, n.Then, n.Else}
	case *LetRec:
		out := make([]Expr, 0, len(n.Bindings)+1)
		for _, b := range n.Bindings {
			out = append(out, b.Value)
		}
		return append(out, n.Body)
	case *Lambda:
		return []Expr{n.Body}
	case *Apply:
		return append([]Expr{n.Fn}, n.Args...)
	case *Begin:
		return n.Stmts
	case *Tuple:
		return n.Elems
	default:
		return nil
	}
}

// Walk visits e depth-first in pre-order. Returning false from fn skips the
// children of the current node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}
