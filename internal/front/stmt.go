package front

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"loom/internal/diag"
	"loom/internal/prim"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
	"loom/internal/trace"
)

// lowerBlock lowers a statement list (a block node) in f.
func (f *frame) lowerBlock(n *sitter.Node) (*block, error) {
	b := &block{}
	for _, s := range namedChildren(n) {
		if err := f.u.ctx.Err(); err != nil {
			return nil, err
		}
		if f.returns {
			return nil, diag.Errorf(diag.SynStmtAfterReturn, f.u.at(s), msgAfterReturn)
		}
		out, err := f.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		b.stmts = append(b.stmts, out...)
	}
	return b, nil
}

func (f *frame) lowerStmt(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	switch n.Type() {
	case "expression_statement":
		return f.lowerExprStmt(n)
	case "return_statement":
		return f.lowerReturn(n)
	case "if_statement":
		return f.lowerIf(n)
	case "while_statement":
		return f.lowerWhile(n)
	case "function_definition":
		return f.lowerLocalDef(n)
	case "decorated_definition":
		return nil, diag.Errorf(diag.SynDecorator, loc, "Functions should not have decorators.")
	case "pass_statement":
		return nil, nil
	case "for_statement":
		return nil, diag.Errorf(diag.SynUnsupported, loc, "For loops are not supported.")
	default:
		return nil, unrecognized(loc, n)
	}
}

func (f *frame) lowerExprStmt(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	kids := namedChildren(n)
	if len(kids) == 1 {
		switch kids[0].Type() {
		case "assignment":
			return f.lowerAssign(kids[0])
		case "augmented_assignment":
			return f.lowerAugAssign(kids[0])
		}
	}
	var value surface.Expr
	if len(kids) == 1 {
		v, err := f.lowerExpr(kids[0])
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		elems, err := f.lowerExprs(kids)
		if err != nil {
			return nil, err
		}
		value = &surface.Tuple{Elems: elems, Pos: loc}
	}
	return []stmt{{expr: value, loc: loc}}, nil
}

func (f *frame) lowerAssign(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if right == nil {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Annotated declarations without a value are not supported.")
	}
	if right.Type() == "assignment" {
		return nil, diag.Errorf(diag.SynMultiTargetAssign, loc, "Multi-target assignment is not supported.")
	}
	switch left.Type() {
	case "identifier":
	case "pattern_list", "tuple_pattern", "list_pattern", "list_splat_pattern":
		return nil, diag.Errorf(diag.SynDestructuringAssign, loc, "Deconstructing assignment is not supported.")
	default:
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Assignment to %s is not supported.", left.Type())
	}
	value, err := f.lowerExpr(right)
	if err != nil {
		return nil, err
	}
	return []stmt{f.assign(f.u.ident(left), value, loc)}, nil
}

func (f *frame) lowerAugAssign(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	left := n.ChildByFieldName("left")
	if left.Type() != "identifier" {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Augmented assignment to %s is not supported.", left.Type())
	}
	opTok := f.u.text(n.ChildByFieldName("operator"))
	op, ok := prim.AugmentedOperator(opTok)
	if !ok {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unknown operator: %s", opTok)
	}
	name := f.u.ident(left)
	cur := f.readName(name, f.u.at(left))
	rhs, err := f.lowerExpr(n.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	value := &surface.Apply{Fn: builtin(op.Name, loc), Args: []surface.Expr{cur, rhs}, Pos: loc}
	return []stmt{f.assign(name, value, loc)}, nil
}

func (f *frame) lowerReturn(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	if f.returnError != "" {
		return nil, diag.Errorf(diag.SynReturnForbidden, loc, "%s", f.returnError)
	}
	var value surface.Expr = &surface.Literal{Value: nil, Pos: loc}
	if kids := namedChildren(n); len(kids) > 0 {
		v, err := f.lowerExpr(kids[0])
		if err != nil {
			return nil, err
		}
		value = v
	}
	f.returns = true
	return []stmt{{expr: value, loc: loc}}, nil
}

// arm lowers one branch of a conditional into the given child frame.
type arm func(fr *frame) (*block, error)

func (f *frame) lowerIf(n *sitter.Node) ([]stmt, error) {
	var alts []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "elif_clause" || c.Type() == "else_clause" {
			alts = append(alts, c)
		}
	}
	return f.lowerCond(n, n.ChildByFieldName("condition"), n.ChildByFieldName("consequence"), alts)
}

// lowerCond lowers "if cond: body" followed by elif/else clauses; an elif
// becomes a conditional nested in the else arm.
func (f *frame) lowerCond(n, cond, body *sitter.Node, alts []*sitter.Node) ([]stmt, error) {
	then := func(fr *frame) (*block, error) { return fr.lowerBlock(body) }
	orelse := func(fr *frame) (*block, error) { return &block{}, nil }
	if len(alts) > 0 {
		alt, rest := alts[0], alts[1:]
		switch alt.Type() {
		case "else_clause":
			orelse = func(fr *frame) (*block, error) { return fr.lowerBlock(alt.ChildByFieldName("body")) }
		case "elif_clause":
			orelse = func(fr *frame) (*block, error) {
				out, err := fr.lowerCond(alt, alt.ChildByFieldName("condition"), alt.ChildByFieldName("consequence"), rest)
				if err != nil {
					return nil, err
				}
				return &block{stmts: out}, nil
			}
		}
	}
	return f.lowerBranches(f.u.at(n), f.u.span(n), cond, then, orelse)
}

func (f *frame) lowerBranches(loc source.Location, span source.Span, condNode *sitter.Node, then, orelse arm) ([]stmt, error) {
	cond, err := f.lowerExpr(condNode)
	if err != nil {
		return nil, err
	}
	p1 := f.child(symbols.ScopeBranch, span)
	b1, err := then(p1)
	if err != nil {
		return nil, err
	}
	p2 := f.child(symbols.ScopeBranch, span)
	b2, err := orelse(p2)
	if err != nil {
		return nil, err
	}

	if p1.returns != p2.returns {
		return nil, diag.Errorf(diag.SynBranchReturnMismatch, loc, "Either none or all branches of an if statement must return a value.")
	}
	names1, names2 := p1.assignedNames(), p2.assignedNames()
	if !slices.Equal(names1, names2) {
		return nil, diag.Errorf(diag.SynBranchAssignMismatch, loc,
			"All branches of an if statement must assign to the same set of variables.\nTrue branch sets: %s\nElse branch sets: %s",
			strings.Join(names1, " "), strings.Join(names2, " "))
	}

	if p1.returns {
		thenExpr, err := b1.build(nil)
		if err != nil {
			return nil, err
		}
		elseExpr, err := b2.build(nil)
		if err != nil {
			return nil, err
		}
		f.returns = true
		return []stmt{{expr: &surface.If{Cond: cond, Then: thenExpr, Else: elseExpr, Pos: loc}, loc: loc}}, nil
	}

	var r1, r2 surface.Expr
	switch len(names1) {
	case 0:
		r1, r2 = surface.NewTuple(), surface.NewTuple()
	case 1:
		r1, r2 = p1.current(names1[0]), p2.current(names1[0])
	default:
		e1 := make([]surface.Expr, 0, len(names1))
		e2 := make([]surface.Expr, 0, len(names1))
		for _, name := range names1 {
			e1 = append(e1, p1.current(name))
			e2 = append(e2, p2.current(name))
		}
		r1, r2 = &surface.Tuple{Elems: e1, Pos: loc}, &surface.Tuple{Elems: e2, Pos: loc}
	}
	thenExpr, err := b1.build(r1)
	if err != nil {
		return nil, err
	}
	elseExpr, err := b2.build(r2)
	if err != nil {
		return nil, err
	}
	value := &surface.If{Cond: cond, Then: thenExpr, Else: elseExpr, Pos: loc}

	switch len(names1) {
	case 0:
		return []stmt{{expr: value, loc: loc}}, nil
	case 1:
		return []stmt{f.assign(names1[0], value, loc)}, nil
	default:
		return f.unpack(names1, value, loc), nil
	}
}

func (f *frame) lowerWhile(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	span := f.u.span(n)
	if n.ChildByFieldName("alternative") != nil {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "While loops cannot have an else clause.")
	}
	condNode := n.ChildByFieldName("condition")
	bodyNode := n.ChildByFieldName("body")
	helper := f.globals.Fresh("#while", loc)

	// discovery: which names does the loop read from outside and assign
	probe := f.child(symbols.ScopeLoop, span)
	probe.returnError = msgNoReturnInLoop
	probe.discovery = true
	probe.globals = symbols.NewGlobals()
	if _, err := probe.lowerExpr(condNode); err != nil {
		return nil, err
	}
	if _, err := probe.lowerBlock(bodyNode); err != nil {
		return nil, err
	}
	outputs := probe.assignedNames()
	inputs := unionSorted(probe.freeOrder, outputs)

	// emission: re-lower with exactly the inputs bound to parameters
	body := f.child(symbols.ScopeLoop, span)
	body.returnError = msgNoReturnInLoop
	params := make([]*surface.Symbol, 0, len(inputs))
	for _, name := range inputs {
		sym := body.env.Fresh(name, loc)
		body.env.Bind(name, sym)
		params = append(params, sym)
	}
	test, err := body.lowerExpr(condNode)
	if err != nil {
		return nil, err
	}
	initial := make([]surface.Expr, 0, len(outputs))
	for _, name := range outputs {
		initial = append(initial, body.current(name))
	}
	blk, err := body.lowerBlock(bodyNode)
	if err != nil {
		return nil, err
	}
	next := make([]surface.Expr, 0, len(inputs))
	for _, name := range inputs {
		next = append(next, body.current(name))
	}
	recur := &surface.Apply{Fn: helper, Args: next, Pos: loc}
	then, err := blk.build(recur)
	if err != nil {
		return nil, err
	}
	lam := &surface.Lambda{
		Name:   helper.Label,
		Params: params,
		Body:   &surface.If{Cond: test, Then: then, Else: &surface.Tuple{Elems: initial, Pos: loc}, Pos: loc},
		Pos:    loc,
	}
	f.globals.Define(helper.Label, lam)
	f.globals.Access(helper.Label)
	if !f.discovery {
		trace.Point(f.u.ctx, trace.ScopeNode, "while", helper.Label)
	}

	args := make([]surface.Expr, 0, len(inputs))
	for _, name := range inputs {
		if _, _, bound := f.env.Resolve(name); !bound {
			// first assigned inside the loop: enters the helper as None
			args = append(args, &surface.Literal{Value: nil, Pos: loc})
			continue
		}
		args = append(args, f.readName(name, loc))
	}
	call := &surface.Apply{Fn: helper, Args: args, Pos: loc}
	return f.unpack(outputs, call, loc), nil
}

// lowerGlobalDef lowers the entry point: it is registered in the global
// table and may carry decorators (ignored).
func (f *frame) lowerGlobalDef(n, outer *sitter.Node) (*surface.Symbol, error) {
	loc := f.u.at(outer)
	name := f.u.ident(n.ChildByFieldName("name"))
	sp, _ := trace.Start(f.u.ctx, trace.ScopeNode, "def:"+name)
	defer sp.End("")
	lam, err := f.lowerFunction(n, name, nil)
	if err != nil {
		return nil, err
	}
	lam.Pos = loc
	f.globals.Define(name, lam)
	return surface.GlobalSym(name, loc), nil
}

// lowerLocalDef binds a nested definition to its name in the enclosing
// scope. The name is bound before the body is lowered so the function may
// call itself.
func (f *frame) lowerLocalDef(n *sitter.Node) ([]stmt, error) {
	loc := f.u.at(n)
	name := f.u.ident(n.ChildByFieldName("name"))
	self := f.env.Rebind(name, loc)
	f.assigned[name] = struct{}{}
	lam, err := f.lowerFunction(n, name, self)
	if err != nil {
		return nil, err
	}
	return []stmt{{bind: &surface.Binding{Sym: self, Value: lam}, loc: loc}}, nil
}

func (f *frame) lowerFunction(n *sitter.Node, name string, self *surface.Symbol) (*surface.Lambda, error) {
	loc := f.u.at(n)
	sub := f.child(symbols.ScopeFunction, f.u.span(n))
	sub.returnError = ""
	params, err := sub.bindParams(n.ChildByFieldName("parameters"), loc)
	if err != nil {
		return nil, err
	}
	bodyNode := n.ChildByFieldName("body")
	blk, err := sub.lowerBlock(bodyNode)
	if err != nil {
		return nil, err
	}
	stripDocstring(blk)
	result, err := blk.build(nil)
	if err != nil {
		return nil, err
	}
	for _, fv := range sub.freeOrder {
		v := sub.free[fv]
		if self != nil && v.value == self {
			continue
		}
		at := v.value.Pos
		if at.IsZero() {
			at = v.at
		}
		return nil, diag.Errorf(diag.SynFreeVariable, at, "Functions cannot have free variables.")
	}
	if !sub.returns {
		return nil, diag.Errorf(diag.SynMissingReturn, loc, "Function does not return a value.")
	}
	return &surface.Lambda{Name: name, Params: params, Body: result, Pos: loc}, nil
}

// stripDocstring drops a leading bare string literal.
func stripDocstring(b *block) {
	if len(b.stmts) < 2 || b.stmts[0].bind != nil {
		return
	}
	if lit, ok := b.stmts[0].expr.(*surface.Literal); ok {
		if _, isStr := lit.Value.(string); isStr {
			b.stmts = b.stmts[1:]
		}
	}
}

// bindParams validates a parameter list and binds each name to a fresh
// symbol in f.
func (f *frame) bindParams(n *sitter.Node, loc source.Location) ([]*surface.Symbol, error) {
	var params []*surface.Symbol
	for _, p := range namedChildren(n) {
		ploc := f.u.at(p)
		var id *sitter.Node
		switch p.Type() {
		case "identifier":
			id = p
		case "typed_parameter":
			first := namedChildren(p)[0]
			if first.Type() != "identifier" {
				return nil, diag.Errorf(diag.SynVarargs, loc, "Varargs are not allowed.")
			}
			id = first
		case "list_splat_pattern", "dictionary_splat_pattern":
			return nil, diag.Errorf(diag.SynVarargs, loc, "Varargs are not allowed.")
		case "keyword_separator":
			return nil, diag.Errorf(diag.SynKeywordOnlyParam, loc, "Keyword-only arguments are not allowed.")
		case "default_parameter", "typed_default_parameter":
			return nil, diag.Errorf(diag.SynDefaultParam, loc, "Default arguments are not allowed.")
		case "positional_separator":
			continue
		default:
			return nil, diag.Errorf(diag.SynUnsupported, ploc, "Unsupported parameter: %s", p.Type())
		}
		name := f.u.ident(id)
		sym := f.env.Fresh(name, ploc)
		f.env.Bind(name, sym)
		params = append(params, sym)
	}
	return params, nil
}

func unionSorted(a, b []string) []string {
	out := append(append([]string(nil), a...), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
