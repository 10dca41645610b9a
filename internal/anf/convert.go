package anf

import (
	"fmt"

	"loom/internal/prim"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
)

type symKey struct {
	label, namespace string
	kind             surface.SymbolKind
}

func keyOf(s *surface.Symbol) symKey { return symKey{s.Label, s.Namespace, s.Kind} }

// scope is one lexical layer: a LetRec or a lambda's parameters. Layers of
// the same lambda share its graph.
type scope struct {
	graph  GraphID
	vars   map[symKey]NodeID
	parent *scope
}

func (s *scope) push(g GraphID) *scope {
	return &scope{graph: g, vars: make(map[symKey]NodeID), parent: s}
}

func (s *scope) lookup(k symKey) (NodeID, bool) {
	for c := s; c != nil; c = c.parent {
		if id, ok := c.vars[k]; ok {
			return id, true
		}
	}
	return NoNodeID, false
}

type converter struct {
	m *Module
}

// Convert builds a graph for every definition of globals. All globals are
// declared before any body is converted, so references between them (and
// recursive loop helpers) resolve to graph constants.
func Convert(globals *symbols.Globals) (*Module, error) {
	c := &converter{m: NewModule()}
	names := globals.Names()
	for _, name := range names {
		c.m.globals[name] = c.m.NewGraph(name)
	}
	for _, name := range names {
		lam, _ := globals.Lookup(name)
		g := c.m.globals[name]
		c.m.Graph(g).Debug.Loc = lam.Pos
		if err := c.lambdaInto(g, lam, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return c.m, nil
}

func (c *converter) lambdaInto(g GraphID, lam *surface.Lambda, parent *scope) error {
	s := parent.push(g)
	for _, p := range lam.Params {
		s.vars[keyOf(p)] = c.m.NewParameter(g, p.Label)
		c.m.Node(s.vars[keyOf(p)]).Debug.Loc = p.Pos
	}
	out, err := c.expr(lam.Body, s)
	if err != nil {
		return err
	}
	c.m.SetReturn(g, out)
	return nil
}

func (c *converter) expr(e surface.Expr, s *scope) (NodeID, error) {
	switch e := e.(type) {
	case *surface.Symbol:
		return c.symbol(e, s)
	case *surface.Literal:
		return c.m.NewConstant(e.Value), nil
	case *surface.Apply:
		fn, err := c.expr(e.Fn, s)
		if err != nil {
			return NoNodeID, err
		}
		args, err := c.exprs(e.Args, s)
		if err != nil {
			return NoNodeID, err
		}
		return c.located(c.m.NewApply(s.graph, append([]NodeID{fn}, args...)...), e.Pos), nil
	case *surface.Tuple:
		elems, err := c.exprs(e.Elems, s)
		if err != nil {
			return NoNodeID, err
		}
		fn := c.m.NewConstant(prim.MakeTuple)
		return c.located(c.m.NewApply(s.graph, append([]NodeID{fn}, elems...)...), e.Pos), nil
	case *surface.If:
		return c.branch(e, s)
	case *surface.LetRec:
		return c.letrec(e, s)
	case *surface.Begin:
		if len(e.Stmts) == 0 {
			return c.m.NewApply(s.graph, c.m.NewConstant(prim.MakeTuple)), nil
		}
		var last NodeID
		for _, st := range e.Stmts {
			id, err := c.expr(st, s)
			if err != nil {
				return NoNodeID, err
			}
			last = id
		}
		return last, nil
	case *surface.Lambda:
		g := c.m.NewGraph(e.Name)
		c.m.Graph(g).Debug.Loc = e.Pos
		if err := c.lambdaInto(g, e, s); err != nil {
			return NoNodeID, err
		}
		return c.m.NewConstant(g), nil
	case nil:
		return NoNodeID, fmt.Errorf("anf: nil expression")
	default:
		return NoNodeID, fmt.Errorf("anf: unexpected expression %T", e)
	}
}

func (c *converter) exprs(es []surface.Expr, s *scope) ([]NodeID, error) {
	out := make([]NodeID, 0, len(es))
	for _, e := range es {
		id, err := c.expr(e, s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *converter) located(id NodeID, loc source.Location) NodeID {
	if n := c.m.Node(id); n != nil && !loc.IsZero() {
		n.Debug.Loc = loc
	}
	return id
}

func (c *converter) symbol(sym *surface.Symbol, s *scope) (NodeID, error) {
	switch {
	case sym.IsBuiltin():
		p, ok := prim.Lookup(sym.Label)
		if !ok {
			return NoNodeID, fmt.Errorf("anf: unknown primitive %q", sym.Label)
		}
		return c.m.NewConstant(p), nil
	case sym.IsGlobal():
		if g, ok := c.m.globals[sym.Label]; ok {
			return c.m.NewConstant(g), nil
		}
		return c.m.NewConstant(GlobalRef{Name: sym.Label}), nil
	default:
		id, ok := s.lookup(keyOf(sym))
		if !ok {
			return NoNodeID, fmt.Errorf("anf: unbound symbol %s", sym.Label)
		}
		return id, nil
	}
}

// branch lowers (if c a b) to if(c, then, else)() where then and else are
// nullary graphs closing over the enclosing graph.
func (c *converter) branch(e *surface.If, s *scope) (NodeID, error) {
	cond, err := c.expr(e.Cond, s)
	if err != nil {
		return NoNodeID, err
	}
	base := c.m.Graph(s.graph).Debug.Name
	arms := [2]surface.Expr{e.Then, e.Else}
	var graphs [2]NodeID
	for i, suffix := range [2]string{"then", "else"} {
		g := c.m.NewGraph(base + "/" + suffix)
		out, err := c.expr(arms[i], s.push(g))
		if err != nil {
			return NoNodeID, err
		}
		c.m.SetReturn(g, out)
		graphs[i] = c.m.NewConstant(g)
	}
	sel := c.m.NewApply(s.graph, c.m.NewConstant(prim.If), cond, graphs[0], graphs[1])
	return c.located(c.m.NewApply(s.graph, sel), e.Pos), nil
}

func (c *converter) letrec(e *surface.LetRec, s *scope) (NodeID, error) {
	inner := s.push(s.graph)
	pending := make(map[int]GraphID)
	for i, b := range e.Bindings {
		if lam, ok := b.Value.(*surface.Lambda); ok {
			name := lam.Name
			if name == "" {
				name = b.Sym.Label
			}
			g := c.m.NewGraph(name)
			c.m.Graph(g).Debug.Loc = lam.Pos
			pending[i] = g
			inner.vars[keyOf(b.Sym)] = c.m.NewConstant(g)
		}
	}
	for i, b := range e.Bindings {
		if g, ok := pending[i]; ok {
			if err := c.lambdaInto(g, b.Value.(*surface.Lambda), inner); err != nil {
				return NoNodeID, err
			}
			c.name(inner.vars[keyOf(b.Sym)], b.Sym.Label)
			continue
		}
		id, err := c.expr(b.Value, inner)
		if err != nil {
			return NoNodeID, err
		}
		c.name(id, b.Sym.Label)
		inner.vars[keyOf(b.Sym)] = id
	}
	return c.expr(e.Body, inner)
}

// name labels a node after the binding that produced it unless an earlier
// binding already did (x = y keeps y's name).
func (c *converter) name(id NodeID, label string) {
	if n := c.m.Node(id); n != nil && n.Debug.Name == "" {
		n.Debug.Name = label
	}
}
