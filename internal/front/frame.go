package front

import (
	"sort"

	"loom/internal/diag"
	"loom/internal/prim"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
)

const (
	msgNoReturnInLoop = "While loops cannot contain return statements."
	msgAfterReturn    = "There should be no statements after return."
	msgMissingReturn  = "Missing return statement."
)

type freeVar struct {
	value *surface.Symbol
	at    source.Location // first read
}

// frame is the per-scope lowering state. Every frame owns exactly one scope
// of the symbol table, so resolution depth equals the number of frame hops.
type frame struct {
	u      *unit
	parent *frame
	env    symbols.Env

	free      map[string]freeVar
	freeOrder []string
	assigned  map[string]struct{}

	returns     bool
	returnError string

	// globals receives loop helpers; discovery frames use a scratch table
	globals   *symbols.Globals
	discovery bool
}

func newFrame(u *unit, env symbols.Env, parent *frame) *frame {
	f := &frame{
		u:        u,
		parent:   parent,
		env:      env,
		free:     make(map[string]freeVar),
		assigned: make(map[string]struct{}),
		globals:  u.globals,
	}
	if parent != nil {
		f.returnError = parent.returnError
		f.globals = parent.globals
		f.discovery = parent.discovery
	}
	return f
}

func (f *frame) child(kind symbols.ScopeKind, span source.Span) *frame {
	return newFrame(f.u, f.env.Child(kind, span), f)
}

// readName resolves a name read at loc. Names bound in an enclosing scope are
// recorded as free in every frame between this one and the owner; names
// bound nowhere are global references.
func (f *frame) readName(name string, loc source.Location) *surface.Symbol {
	sym, depth, ok := f.env.Resolve(name)
	if !ok {
		f.globals.Access(name)
		return surface.GlobalSym(name, loc)
	}
	g := f
	for i := 0; i < depth && g != nil; i++ {
		g.noteFree(name, sym, loc)
		g = g.parent
	}
	return sym
}

func (f *frame) noteFree(name string, sym *surface.Symbol, loc source.Location) {
	if prev, ok := f.free[name]; ok {
		f.free[name] = freeVar{value: sym, at: prev.at}
		return
	}
	f.free[name] = freeVar{value: sym, at: loc}
	f.freeOrder = append(f.freeOrder, name)
}

// current returns the symbol name is bound to as seen from this frame,
// without recording a free read.
func (f *frame) current(name string) *surface.Symbol {
	sym, _, ok := f.env.Resolve(name)
	if !ok {
		return surface.GlobalSym(name, source.Location{})
	}
	return sym
}

// assign rebinds name to a fresh symbol holding value.
func (f *frame) assign(name string, value surface.Expr, loc source.Location) stmt {
	sym := f.env.Rebind(name, loc)
	f.assigned[name] = struct{}{}
	return stmt{bind: &surface.Binding{Sym: sym, Value: value}, loc: loc}
}

func (f *frame) assignedNames() []string {
	out := make([]string, 0, len(f.assigned))
	for n := range f.assigned {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// unpack binds tmp to value and then each of names to its element of tmp.
func (f *frame) unpack(names []string, value surface.Expr, loc source.Location) []stmt {
	tmp := f.env.Fresh("#tmp", loc)
	out := make([]stmt, 0, len(names)+1)
	out = append(out, stmt{bind: &surface.Binding{Sym: tmp, Value: value}, loc: loc})
	for i, name := range names {
		idx := surface.NewApply(builtin(prim.Index.Name, loc), tmp, &surface.Literal{Value: int64(i), Pos: loc})
		idx.Pos = loc
		out = append(out, f.assign(name, idx, loc))
	}
	return out
}

// stmt is one lowered statement: either a binding or an expression
// evaluated for effect (or as the scope's result).
type stmt struct {
	bind *surface.Binding
	expr surface.Expr
	loc  source.Location
}

// block is a lowered statement sequence waiting for its result value.
type block struct {
	stmts []stmt
}

// build groups the statements into maximal binding and expression runs.
// result, when non-nil, is the value the block must produce.
func (b *block) build(result surface.Expr) (surface.Expr, error) {
	if len(b.stmts) == 0 {
		if result != nil {
			return result, nil
		}
		return surface.NewTuple(), nil
	}
	var runs [][]stmt
	for i, s := range b.stmts {
		if i > 0 && (s.bind != nil) == (b.stmts[i-1].bind != nil) {
			runs[len(runs)-1] = append(runs[len(runs)-1], s)
			continue
		}
		runs = append(runs, []stmt{s})
	}
	return buildRuns(runs, result)
}

func buildRuns(runs [][]stmt, result surface.Expr) (surface.Expr, error) {
	run, rest := runs[0], runs[1:]
	if run[0].bind != nil {
		bindings := make([]surface.Binding, 0, len(run))
		for _, s := range run {
			bindings = append(bindings, *s.bind)
		}
		var body surface.Expr
		switch {
		case len(rest) > 0:
			var err error
			if body, err = buildRuns(rest, result); err != nil {
				return nil, err
			}
		case result != nil:
			body = result
		default:
			return nil, diag.Errorf(diag.SynMissingReturn, run[len(run)-1].loc, msgMissingReturn)
		}
		return &surface.LetRec{Bindings: bindings, Body: body, Pos: run[0].loc}, nil
	}

	exprs := make([]surface.Expr, 0, len(run)+1)
	for _, s := range run {
		exprs = append(exprs, s.expr)
	}
	if len(rest) > 0 {
		tail, err := buildRuns(rest, result)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, tail)
	} else if result != nil {
		exprs = append(exprs, result)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &surface.Begin{Stmts: exprs, Pos: run[0].loc}, nil
}
