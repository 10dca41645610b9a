package anf

import (
	"errors"
	"fmt"

	"loom/internal/prim"
)

// Validate checks that every forward edge has its mirrored use and back,
// that ownership is consistent and that every graph has a return.
// All problems are joined into one error.
func (m *Module) Validate() error {
	var errs []error
	for i := 1; i < len(m.nodes); i++ {
		id := nodeID(i)
		n := &m.nodes[i]
		switch n.Kind {
		case KindApply, KindParameter:
			if m.Graph(n.Graph) == nil {
				errs = append(errs, fmt.Errorf("node %d (%s): owner graph %d is invalid", id, n.Kind, n.Graph))
			}
		case KindConstant:
			if n.Graph != NoGraphID {
				errs = append(errs, fmt.Errorf("node %d: constant owned by graph %d", id, n.Graph))
			}
		default:
			errs = append(errs, fmt.Errorf("node %d: invalid kind", id))
		}
		if n.Kind != KindApply && len(n.inputs) != 0 {
			errs = append(errs, fmt.Errorf("node %d (%s): has %d inputs", id, n.Kind, len(n.inputs)))
		}
		for idx, in := range n.inputs {
			target := m.Node(in)
			if target == nil {
				errs = append(errs, fmt.Errorf("node %d: input %d refers to invalid node %d", id, idx, in))
				continue
			}
			if _, ok := target.uses[Use{Node: id, Index: idx}]; !ok {
				errs = append(errs, fmt.Errorf("node %d: input %d -> %d has no mirrored use", id, idx, in))
			}
		}
		for u := range n.uses {
			user := m.Node(u.Node)
			if user == nil || u.Index < 0 || u.Index >= len(user.inputs) || user.inputs[u.Index] != id {
				errs = append(errs, fmt.Errorf("node %d: stale use (%d, %d)", id, u.Node, u.Index))
			}
		}
	}
	for _, g := range m.Graphs() {
		errs = append(errs, m.validateGraph(g)...)
	}
	return errors.Join(errs...)
}

func (m *Module) validateGraph(g GraphID) []error {
	var errs []error
	gr := m.Graph(g)
	for idx, p := range gr.Params {
		n := m.Node(p)
		if n == nil || n.Kind != KindParameter || n.Graph != g {
			errs = append(errs, fmt.Errorf("graph %d (%s): parameter %d is not a parameter of this graph", g, gr.Debug.Name, idx))
		}
	}
	if !gr.Return.IsValid() {
		return append(errs, fmt.Errorf("graph %d (%s): return is not set", g, gr.Debug.Name))
	}
	ret := m.Node(gr.Return)
	switch {
	case ret == nil || ret.Kind != KindApply || ret.Graph != g:
		errs = append(errs, fmt.Errorf("graph %d (%s): return is not an application of this graph", g, gr.Debug.Name))
	case len(ret.inputs) != 2:
		errs = append(errs, fmt.Errorf("graph %d (%s): return has %d inputs", g, gr.Debug.Name, len(ret.inputs)))
	default:
		callee := m.Node(ret.inputs[0])
		if callee == nil || callee.Kind != KindConstant || callee.Value != prim.Return {
			errs = append(errs, fmt.Errorf("graph %d (%s): return does not call the return primitive", g, gr.Debug.Name))
		}
	}
	return errs
}
