// Package front lowers host-syntax function definitions into the closed
// functional surface form.
//
// The host syntax is Python, parsed with tree-sitter. Imperative constructs
// are desugared structurally: reassignment becomes nested simultaneous
// bindings of fresh symbols, conditionals become conditional expressions
// over the set of names they assign, and while loops become globally
// registered tail-recursive helpers.
package front

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"loom/internal/diag"
	"loom/internal/source"
	"loom/internal/surface"
	"loom/internal/symbols"
	"loom/internal/trace"
)

// Options tune one compilation unit.
type Options struct {
	// Namespace of locally generated symbols; empty means a random UUID.
	Namespace string
	// Globals receives the compiled definitions. nil allocates a fresh table.
	Globals *symbols.Globals
	// Files receives the snippet handed to ParseSource. nil allocates a fresh set.
	Files *source.FileSet
}

// Result is the outcome of lowering one unit.
type Result struct {
	// Ref names the first top-level definition in Globals.
	Ref *surface.Symbol
	// Refs names every top-level definition, in source order.
	Refs []*surface.Symbol
	// Globals holds every definition generated so far, loop helpers included.
	Globals *symbols.Globals
	// GlobalsAccessed lists every global name referenced, sorted.
	GlobalsAccessed []string
	Table           *symbols.Table
	Locator         source.Locator
	// Files holds the source the Locator points into.
	Files *source.FileSet
}

// Def returns the definition Ref points at.
func (r *Result) Def() *surface.Lambda {
	if r == nil || r.Ref == nil {
		return nil
	}
	lam, _ := r.Globals.Lookup(r.Ref.Label)
	return lam
}

// ParseSource lowers the literal text of exactly one function definition.
// origin names where the text came from and lineOffset is the line of the
// origin on which src starts.
func ParseSource(ctx context.Context, origin string, lineOffset uint32, src []byte, opts Options) (*Result, error) {
	fs := opts.Files
	if fs == nil {
		fs = source.NewFileSet()
	}
	loc := source.NewLocator(fs, origin, lineOffset, src)
	return compile(ctx, fs, loc, fs.Get(loc.File).Content, opts, true)
}

// ParseFile lowers every top-level function definition of a file already
// registered in fs. The definitions share one unit: they may refer to each
// other through the global namespace.
func ParseFile(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("front: unknown file id %d", id)
	}
	loc := source.Locator{Origin: file.Path, LineOffset: 1, File: id}
	return compile(ctx, fs, loc, file.Content, opts, false)
}

func compile(ctx context.Context, fs *source.FileSet, loc source.Locator, src []byte, opts Options, single bool) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	span, ctx := trace.Start(ctx, trace.ScopeUnit, "unit:"+loc.Origin)
	defer span.End("")

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("host parse %s: %w", loc.Origin, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	u := &unit{
		ctx:     ctx,
		src:     src,
		loc:     loc,
		table:   symbols.NewTable(symbols.Hints{}, symbols.NewGenSym(opts.Namespace)),
		globals: opts.Globals,
	}
	if u.globals == nil {
		u.globals = symbols.NewGlobals()
	}
	if root == nil {
		return nil, diag.Errorf(diag.SynHostParse, source.Location{Origin: loc.Origin, Line: loc.LineOffset, Column: 1}, "Empty syntax tree.")
	}
	if root.HasError() {
		bad := firstError(root)
		return nil, diag.Errorf(diag.SynHostParse, u.at(bad), "Invalid syntax.")
	}

	defs := namedChildren(root)
	if len(defs) == 0 {
		return nil, diag.Errorf(diag.SynNoDefinition, u.at(root), "No function definition found.")
	}
	if single && len(defs) > 1 {
		return nil, diag.Errorf(diag.SynUnsupported, u.at(defs[1]), "Expected a single function definition.")
	}

	top := newFrame(u, u.table.Root(u.span(root)), nil)
	res := &Result{Globals: u.globals, Table: u.table, Locator: loc, Files: fs}
	for _, def := range defs {
		ref, err := top.lowerTopLevel(def)
		if err != nil {
			span.Fail(err)
			return nil, err
		}
		res.Refs = append(res.Refs, ref)
	}
	res.Ref = res.Refs[0]
	res.GlobalsAccessed = u.globals.Accessed()
	span.WithExtra("definitions", fmt.Sprint(len(res.Refs)))
	return res, nil
}

// firstError finds the outermost ERROR node, or the deepest node that still
// reports an error (a missing token).
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstError(c)
		}
	}
	return n
}

func (f *frame) lowerTopLevel(n *sitter.Node) (*surface.Symbol, error) {
	switch n.Type() {
	case "function_definition":
		return f.lowerGlobalDef(n, n)
	case "decorated_definition":
		def := n.ChildByFieldName("definition")
		if def == nil || def.Type() != "function_definition" {
			return nil, unrecognized(f.u.at(n), n)
		}
		return f.lowerGlobalDef(def, n)
	default:
		return nil, diag.Errorf(diag.SynNoDefinition, f.u.at(n), "Only function definitions are allowed at the top level.")
	}
}
