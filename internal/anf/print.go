package anf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"loom/internal/prim"
	"loom/internal/surface"
)

// NodeString renders a node for debugging.
//
//	parameter  x      (or arg<i> when unnamed)
//	constant   1, add, f
//	apply      y = add(x, 1)
func (m *Module) NodeString(id NodeID) string {
	n := m.Node(id)
	if n == nil {
		return "<invalid>"
	}
	switch n.Kind {
	case KindParameter:
		if n.Debug.Name != "" {
			return n.Debug.Name
		}
		return m.paramName(id, n)
	case KindConstant:
		return m.constText(n.Value)
	case KindApply:
		s := m.applyText(n)
		if n.Debug.Name != "" {
			return n.Debug.Name + " = " + s
		}
		return s
	default:
		return "<invalid>"
	}
}

func (m *Module) paramName(id NodeID, n *Node) string {
	if gr := m.Graph(n.Graph); gr != nil {
		for i, p := range gr.Params {
			if p == id {
				return fmt.Sprintf("arg%d", i)
			}
		}
	}
	return "arg?"
}

func (m *Module) applyText(n *Node) string {
	if len(n.inputs) == 0 {
		return "()"
	}
	var sb strings.Builder
	sb.WriteString(m.inputText(n.inputs[0]))
	sb.WriteByte('(')
	for i, in := range n.inputs[1:] {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.inputText(in))
	}
	sb.WriteByte(')')
	return sb.String()
}

// inputText shows a node as it appears in argument position: by debug name
// when it has one.
func (m *Module) inputText(id NodeID) string {
	n := m.Node(id)
	if n == nil {
		return "?"
	}
	if n.Debug.Name != "" {
		return n.Debug.Name
	}
	if n.Kind == KindApply {
		return m.applyText(n)
	}
	return m.NodeString(id)
}

func (m *Module) constText(v any) string {
	switch v := v.(type) {
	case *prim.Primitive:
		return v.Name
	case GraphID:
		if gr := m.Graph(v); gr != nil && gr.Debug.Name != "" {
			return gr.Debug.Name
		}
		return fmt.Sprintf("graph%d", v)
	case GlobalRef:
		return v.Name
	case nil, bool, int64, float64, string:
		return surface.LiteralString(v)
	default:
		return fmt.Sprint(v)
	}
}

// GraphString renders name(params…) → result, with ? for a graph whose
// return is not set yet.
func (m *Module) GraphString(g GraphID) string {
	gr := m.Graph(g)
	if gr == nil {
		return "<invalid>"
	}
	params := make([]string, len(gr.Params))
	for i, p := range gr.Params {
		params[i] = m.NodeString(p)
	}
	result := "?"
	if r, ok := m.Result(g); ok {
		result = m.inputText(r)
	}
	return fmt.Sprintf("%s(%s) → %s", gr.Debug.Name, strings.Join(params, ", "), result)
}

// Dump writes every graph followed by its reachable applications in
// topological order.
func (m *Module) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, g := range m.Graphs() {
		fmt.Fprintln(bw, m.GraphString(g))
		for _, n := range m.Schedule(g) {
			fmt.Fprintf(bw, "  %s\n", m.NodeString(n))
		}
	}
	return bw.Flush()
}

// Schedule returns the applications of g reachable from its return, inputs
// before users.
func (m *Module) Schedule(g GraphID) []NodeID {
	gr := m.Graph(g)
	if gr == nil || !gr.Return.IsValid() {
		return nil
	}
	var (
		out  []NodeID
		seen = make(map[NodeID]bool)
	)
	var visit func(id NodeID)
	visit = func(id NodeID) {
		n := m.Node(id)
		if n == nil || seen[id] || n.Kind != KindApply || n.Graph != g {
			return
		}
		seen[id] = true
		for _, in := range n.inputs {
			visit(in)
		}
		out = append(out, id)
	}
	visit(gr.Return)
	return out
}
