package dag

import (
	"fmt"
	"io"
	"strings"

	"loom/internal/surface"
	"loom/internal/symbols"
)

// Deps is the reference structure of one global table.
type Deps struct {
	Index Index
	Graph Graph
	Topo  *Topo
}

// Analyze indexes, links and orders the definitions of globals.
func Analyze(globals *symbols.Globals) *Deps {
	idx := BuildIndex(globals)
	g := BuildGraph(idx, globals)
	return &Deps{Index: idx, Graph: g, Topo: ToposortKahn(g)}
}

// Order names the definitions callee first. Definitions caught in a
// mutual recursion are missing; see Unordered.
func (d *Deps) Order() []string { return d.Index.Names(d.Topo.Order) }

// Unordered names the definitions Kahn could not place.
func (d *Deps) Unordered() []string { return d.Index.Names(d.Topo.Cycles) }

// SelfRecursive names definitions that reference themselves, loop helpers
// among them.
func (d *Deps) SelfRecursive() []string {
	return d.filter(func(i int) bool { return d.Graph.SelfRef[i] })
}

// External names referenced globals that the table does not define.
func (d *Deps) External() []string {
	return d.filter(func(i int) bool { return !d.Graph.Present[i] })
}

func (d *Deps) filter(keep func(int) bool) []string {
	var out []string
	for i, name := range d.Index.IDToName {
		if keep(i) {
			out = append(out, name)
		}
	}
	return out
}

// Fprint writes the analysis, one fact per line:
//
//	order: #while, f
//	batches: [#while] [f]
//	recursive: #while
//	external: helper
func (d *Deps) Fprint(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "order: %s\n", strings.Join(d.Order(), ", "))
	b.WriteString("batches:")
	for _, batch := range d.Topo.Batches {
		fmt.Fprintf(&b, " [%s]", strings.Join(d.Index.Names(batch), " "))
	}
	b.WriteByte('\n')
	line := func(label string, names []string) {
		if len(names) > 0 {
			fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(names, ", "))
		}
	}
	line("recursive", d.SelfRecursive())
	line("external", d.External())
	line("unordered", d.Unordered())
	_, err := io.WriteString(w, b.String())
	return err
}

func refs(lam *surface.Lambda) []string {
	if lam == nil {
		return nil
	}
	return surface.GlobalRefs(lam)
}
