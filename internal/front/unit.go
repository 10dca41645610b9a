package front

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/text/unicode/norm"

	"loom/internal/diag"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
)

// unit is the state shared by every frame of one compilation.
type unit struct {
	ctx     context.Context
	src     []byte
	loc     source.Locator
	table   *symbols.Table
	globals *symbols.Globals
}

func (u *unit) at(n *sitter.Node) source.Location {
	if n == nil {
		return source.Location{Origin: u.loc.Origin, Line: u.loc.LineOffset, Column: 1}
	}
	p := n.StartPoint()
	return u.loc.At(p.Row, p.Column, n.StartByte(), n.EndByte())
}

func (u *unit) span(n *sitter.Node) source.Span {
	return source.Span{File: u.loc.File, Start: n.StartByte(), End: n.EndByte()}
}

func (u *unit) text(n *sitter.Node) string {
	return n.Content(u.src)
}

// ident returns the NFKC-normalised spelling of an identifier node.
func (u *unit) ident(n *sitter.Node) string {
	return norm.NFKC.String(u.text(n))
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.NamedChild(i)
		if c == nil || c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func unrecognized(loc source.Location, n *sitter.Node) *diag.SyntaxError {
	return diag.Errorf(diag.SynUnrecognizedConstruct, loc, "Unrecognized syntax construct: %s", n.Type())
}

func builtin(name string, loc source.Location) *surface.Symbol {
	return surface.BuiltinSym(name, loc)
}
