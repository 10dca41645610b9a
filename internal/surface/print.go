package surface

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders e as a single-line s-expression.
func String(e Expr) string {
	var sb strings.Builder
	p := printer{w: &sb}
	p.expr(e, -1)
	return sb.String()
}

// Fprint writes e as an indented s-expression, one compound form per line.
func Fprint(w io.Writer, e Expr) error {
	var sb strings.Builder
	p := printer{w: &sb}
	p.expr(e, 0)
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

type printer struct {
	w *strings.Builder
}

// depth < 0 means single-line output
func (p *printer) sep(depth int) {
	if depth < 0 {
		p.w.WriteByte(' ')
		return
	}
	p.w.WriteByte('\n')
	p.w.WriteString(strings.Repeat("  ", depth))
}

func next(depth int) int {
	if depth < 0 {
		return depth
	}
	return depth + 1
}

func (p *printer) expr(e Expr, depth int) {
	switch n := e.(type) {
	case nil:
		p.w.WriteString("<nil>")
	case *Symbol:
		p.w.WriteString(n.Label)
	case *Literal:
		p.w.WriteString(LiteralString(n.Value))
	case *If:
		p.w.WriteString("(if ")
		p.expr(n.Cond, -1)
		p.sep(next(depth))
		p.expr(n.Then, next(depth))
		p.sep(next(depth))
		p.expr(n.Else, next(depth))
		p.w.WriteByte(')')
	case *LetRec:
		p.w.WriteString("(letrec (")
		for i, b := range n.Bindings {
			if i > 0 {
				p.sep(next(next(depth)))
			}
			p.w.WriteByte('(')
			p.w.WriteString(b.Sym.Label)
			p.w.WriteByte(' ')
			p.expr(b.Value, next(next(depth)))
			p.w.WriteByte(')')
		}
		p.w.WriteByte(')')
		p.sep(next(depth))
		p.expr(n.Body, next(depth))
		p.w.WriteByte(')')
	case *Lambda:
		p.w.WriteString("(lambda (")
		for i, s := range n.Params {
			if i > 0 {
				p.w.WriteByte(' ')
			}
			p.w.WriteString(s.Label)
		}
		p.w.WriteByte(')')
		p.sep(next(depth))
		p.expr(n.Body, next(depth))
		p.w.WriteByte(')')
	case *Apply:
		p.w.WriteByte('(')
		p.expr(n.Fn, -1)
		for _, a := range n.Args {
			p.w.WriteByte(' ')
			p.expr(a, -1)
		}
		p.w.WriteByte(')')
	case *Begin:
		p.w.WriteString("(begin")
		for _, s := range n.Stmts {
			p.sep(next(depth))
			p.expr(s, next(depth))
		}
		p.w.WriteByte(')')
	case *Tuple:
		if len(n.Elems) == 0 {
			p.w.WriteString("()")
			return
		}
		p.w.WriteString("(tuple")
		for _, el := range n.Elems {
			p.w.WriteByte(' ')
			p.expr(el, -1)
		}
		p.w.WriteByte(')')
	default:
		fmt.Fprintf(p.w, "<%T>", e)
	}
}

// LiteralString renders a literal payload the way the host syntax spells it.
func LiteralString(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return strconv.Quote(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}
