package front

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"loom/internal/diag"
	"loom/internal/prim"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
)

func (f *frame) lowerExprs(ns []*sitter.Node) ([]surface.Expr, error) {
	out := make([]surface.Expr, 0, len(ns))
	for _, n := range ns {
		e, err := f.lowerExpr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *frame) lowerExpr(n *sitter.Node) (surface.Expr, error) {
	loc := f.u.at(n)
	switch n.Type() {
	case "identifier":
		return f.readName(f.u.ident(n), loc), nil
	case "integer":
		return f.lowerInt(n, loc)
	case "float":
		return f.lowerFloat(n, loc)
	case "string", "concatenated_string":
		s, err := f.stringValue(n)
		if err != nil {
			return nil, err
		}
		return &surface.Literal{Value: s, Pos: loc}, nil
	case "true":
		return &surface.Literal{Value: true, Pos: loc}, nil
	case "false":
		return &surface.Literal{Value: false, Pos: loc}, nil
	case "none":
		return &surface.Literal{Value: nil, Pos: loc}, nil
	case "parenthesized_expression":
		kids := namedChildren(n)
		if len(kids) != 1 {
			return nil, unrecognized(loc, n)
		}
		return f.lowerExpr(kids[0])
	case "tuple", "expression_list":
		elems, err := f.lowerExprs(namedChildren(n))
		if err != nil {
			return nil, err
		}
		return &surface.Tuple{Elems: elems, Pos: loc}, nil
	case "list":
		elems, err := f.lowerExprs(namedChildren(n))
		if err != nil {
			return nil, err
		}
		return &surface.Apply{Fn: builtin(prim.MakeList.Name, loc), Args: elems, Pos: loc}, nil
	case "binary_operator":
		return f.lowerBinary(n, loc)
	case "unary_operator":
		tok := f.u.text(n.ChildByFieldName("operator"))
		op, ok := prim.UnaryOperator(tok)
		if !ok {
			return nil, diag.Errorf(diag.SynUnsupported, loc, "Unknown operator: %s", tok)
		}
		arg, err := f.lowerExpr(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return &surface.Apply{Fn: builtin(op.Name, loc), Args: []surface.Expr{arg}, Pos: loc}, nil
	case "not_operator":
		arg, err := f.lowerExpr(n.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return &surface.Apply{Fn: builtin(prim.Not.Name, loc), Args: []surface.Expr{arg}, Pos: loc}, nil
	case "boolean_operator":
		return f.lowerBoolean(n, loc)
	case "comparison_operator":
		return f.lowerCompare(n, loc)
	case "conditional_expression":
		kids := namedChildren(n)
		if len(kids) != 3 {
			return nil, unrecognized(loc, n)
		}
		// body if cond else alt
		parts, err := f.lowerExprs([]*sitter.Node{kids[1], kids[0], kids[2]})
		if err != nil {
			return nil, err
		}
		return &surface.If{Cond: parts[0], Then: parts[1], Else: parts[2], Pos: loc}, nil
	case "call":
		return f.lowerCall(n, loc)
	case "subscript":
		return f.lowerSubscript(n, loc)
	case "attribute":
		obj, err := f.lowerExpr(n.ChildByFieldName("object"))
		if err != nil {
			return nil, err
		}
		attr := n.ChildByFieldName("attribute")
		name := &surface.Literal{Value: f.u.ident(attr), Pos: f.u.at(attr)}
		return &surface.Apply{Fn: builtin(prim.GetAttr.Name, loc), Args: []surface.Expr{obj, name}, Pos: loc}, nil
	case "lambda":
		return f.lowerLambda(n, loc)
	case "list_comprehension":
		return f.lowerListComp(n, loc)
	default:
		return nil, unrecognized(loc, n)
	}
}

func (f *frame) lowerInt(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	text := f.u.text(n)
	if strings.ContainsAny(text, "jJlL") {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unsupported numeric literal: %s", text)
	}
	// base 0 understands 0x/0o/0b prefixes and digit separators
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Integer literal out of range: %s", text)
	}
	return &surface.Literal{Value: v, Pos: loc}, nil
}

func (f *frame) lowerFloat(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	text := f.u.text(n)
	if strings.ContainsAny(text, "jJ") {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unsupported numeric literal: %s", text)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Invalid float literal: %s", text)
	}
	return &surface.Literal{Value: v, Pos: loc}, nil
}

func (f *frame) lowerBinary(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	tok := f.u.text(n.ChildByFieldName("operator"))
	op, ok := prim.BinaryOperator(tok)
	if !ok {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unknown operator: %s", tok)
	}
	args, err := f.lowerExprs([]*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")})
	if err != nil {
		return nil, err
	}
	return &surface.Apply{Fn: builtin(op.Name, loc), Args: args, Pos: loc}, nil
}

// lowerBoolean short-circuits through a conditional: "a and b" is
// If(a, b, False) and "a or b" is If(a, True, b).
func (f *frame) lowerBoolean(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	tok := f.u.text(n.ChildByFieldName("operator"))
	parts, err := f.lowerExprs([]*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")})
	if err != nil {
		return nil, err
	}
	left, right := parts[0], parts[1]
	switch tok {
	case "and":
		return &surface.If{Cond: left, Then: right, Else: &surface.Literal{Value: false, Pos: loc}, Pos: loc}, nil
	case "or":
		return &surface.If{Cond: left, Then: &surface.Literal{Value: true, Pos: loc}, Else: right, Pos: loc}, nil
	default:
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unknown operator: %s", tok)
	}
}

func (f *frame) lowerCompare(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	var operands []*sitter.Node
	var ops []string
	pending := ""
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			if c.Type() == "comment" {
				continue
			}
			if pending != "" {
				ops = append(ops, pending)
				pending = ""
			}
			operands = append(operands, c)
			continue
		}
		// "not in" / "is not" may arrive as one aliased token or as two
		if pending != "" {
			pending += " "
		}
		pending += c.Type()
	}
	if len(operands) != 2 || len(ops) != 1 {
		return nil, diag.Errorf(diag.SynChainedComparison, loc, "Comparisons must have a maximum of two operands")
	}
	op, ok := prim.CompareOperator(ops[0])
	if !ok {
		return nil, diag.Errorf(diag.SynUnsupported, loc, "Unknown operator: %s", ops[0])
	}
	args, err := f.lowerExprs(operands)
	if err != nil {
		return nil, err
	}
	return &surface.Apply{Fn: builtin(op.Name, loc), Args: args, Pos: loc}, nil
}

func (f *frame) lowerCall(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	fn, err := f.lowerExpr(n.ChildByFieldName("function"))
	if err != nil {
		return nil, err
	}
	argList := n.ChildByFieldName("arguments")
	if argList.Type() != "argument_list" {
		return nil, unrecognized(f.u.at(argList), argList)
	}
	var args []surface.Expr
	for _, a := range namedChildren(argList) {
		switch a.Type() {
		case "keyword_argument":
			return nil, diag.Errorf(diag.SynKeywordArgument, loc, "Keyword arguments are not allowed.")
		case "list_splat", "dictionary_splat", "parenthesized_list_splat":
			return nil, diag.Errorf(diag.SynVarargs, loc, "Varargs are not allowed.")
		}
		e, err := f.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &surface.Apply{Fn: fn, Args: args, Pos: loc}, nil
}

func (f *frame) lowerSubscript(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	value, err := f.lowerExpr(n.ChildByFieldName("value"))
	if err != nil {
		return nil, err
	}
	// the first named child is the value, the rest are subscripts
	idx, err := f.lowerExprs(namedChildren(n)[1:])
	if err != nil {
		return nil, err
	}
	var key surface.Expr
	if len(idx) == 0 {
		return nil, unrecognized(loc, n)
	}
	if len(idx) == 1 {
		key = idx[0]
	} else {
		key = &surface.Tuple{Elems: idx, Pos: loc}
	}
	return &surface.Apply{Fn: builtin(prim.Index.Name, loc), Args: []surface.Expr{value, key}, Pos: loc}, nil
}

// lowerLambda lowers a function literal. Unlike named definitions, lambdas
// may capture names of the enclosing scopes.
func (f *frame) lowerLambda(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	sub := f.child(symbols.ScopeLambda, f.u.span(n))
	sub.returnError = ""
	params, err := sub.bindParams(n.ChildByFieldName("parameters"), loc)
	if err != nil {
		return nil, err
	}
	body, err := sub.lowerExpr(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return &surface.Lambda{Name: "lambda", Params: params, Body: body, Pos: loc}, nil
}

// lowerListComp turns [e for x in xs if c1 if c2] into
// map(lambda x: e, filter(lambda x: c1 and c2, xs)).
func (f *frame) lowerListComp(n *sitter.Node, loc source.Location) (surface.Expr, error) {
	var forClause *sitter.Node
	var ifs []*sitter.Node
	for _, c := range namedChildren(n)[1:] {
		switch c.Type() {
		case "for_in_clause":
			if forClause != nil {
				return nil, diag.Errorf(diag.SynComprehensionShape, loc, "List comprehensions can only iterate over a single target")
			}
			forClause = c
		case "if_clause":
			ifs = append(ifs, c)
		default:
			return nil, unrecognized(f.u.at(c), c)
		}
	}
	if forClause == nil {
		return nil, unrecognized(loc, n)
	}
	if forClause.ChildByFieldName("left") == nil || forClause.ChildByFieldName("left").Type() != "identifier" {
		return nil, diag.Errorf(diag.SynComprehensionShape, loc, "List comprehension targets must be a single name")
	}
	target := f.u.ident(forClause.ChildByFieldName("left"))
	targetLoc := f.u.at(forClause.ChildByFieldName("left"))

	iters, err := f.lowerExprs(namedChildren(forClause)[1:])
	if err != nil {
		return nil, err
	}
	if len(iters) == 0 {
		return nil, unrecognized(f.u.at(forClause), forClause)
	}
	var seq surface.Expr = iters[0]
	if len(iters) > 1 {
		seq = &surface.Tuple{Elems: iters, Pos: loc}
	}

	if len(ifs) > 0 {
		sub := f.child(symbols.ScopeComprehension, f.u.span(n))
		x := sub.env.Fresh(target, targetLoc)
		sub.env.Bind(target, x)
		conds := make([]surface.Expr, 0, len(ifs))
		for _, c := range ifs {
			kids := namedChildren(c)
			if len(kids) != 1 {
				return nil, unrecognized(f.u.at(c), c)
			}
			e, err := sub.lowerExpr(kids[0])
			if err != nil {
				return nil, err
			}
			conds = append(conds, e)
		}
		cond := conds[len(conds)-1]
		for i := len(conds) - 2; i >= 0; i-- {
			cond = &surface.If{Cond: conds[i], Then: cond, Else: &surface.Literal{Value: false, Pos: loc}, Pos: loc}
		}
		pred := &surface.Lambda{Name: "filtercmp", Params: []*surface.Symbol{x}, Body: cond, Pos: loc}
		seq = &surface.Apply{Fn: builtin(prim.Filter.Name, loc), Args: []surface.Expr{pred, seq}, Pos: loc}
	}

	sub := f.child(symbols.ScopeComprehension, f.u.span(n))
	x := sub.env.Fresh(target, targetLoc)
	sub.env.Bind(target, x)
	elt, err := sub.lowerExpr(n.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	mapper := &surface.Lambda{Name: "listcmp", Params: []*surface.Symbol{x}, Body: elt, Pos: loc}
	return &surface.Apply{Fn: builtin(prim.Map.Name, loc), Args: []surface.Expr{mapper, seq}, Pos: loc}, nil
}
