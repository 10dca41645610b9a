package anf

import (
	"fmt"

	"fortio.org/safecast"

	"loom/internal/prim"
)

// Module owns every graph and node of one compilation. Nothing is freed
// individually.
type Module struct {
	nodes   []Node
	graphs  []Graph
	globals map[string]GraphID
}

// NewModule creates an empty module; index 0 of both arenas is reserved.
func NewModule() *Module {
	return &Module{
		nodes:   make([]Node, 1, 64),
		graphs:  make([]Graph, 1, 8),
		globals: make(map[string]GraphID),
	}
}

// NewGraph allocates an empty graph.
func (m *Module) NewGraph(name string) GraphID {
	v, err := safecast.Conv[uint32](len(m.graphs))
	if err != nil {
		panic(fmt.Errorf("graph arena overflow: %w", err))
	}
	m.graphs = append(m.graphs, Graph{Debug: Debug{Name: name}})
	return GraphID(v)
}

// Graph returns the graph or nil for an invalid ID.
func (m *Module) Graph(id GraphID) *Graph {
	if !id.IsValid() || int(id) >= len(m.graphs) {
		return nil
	}
	return &m.graphs[id]
}

// Graphs lists every graph in creation order.
func (m *Module) Graphs() []GraphID {
	out := make([]GraphID, 0, len(m.graphs)-1)
	for i := 1; i < len(m.graphs); i++ {
		v, err := safecast.Conv[uint32](i)
		if err != nil {
			break
		}
		out = append(out, GraphID(v))
	}
	return out
}

// Global returns the graph registered for a global definition name.
func (m *Module) Global(name string) (GraphID, bool) {
	id, ok := m.globals[name]
	return id, ok
}

// Node returns the node or nil for an invalid ID.
func (m *Module) Node(id NodeID) *Node {
	if !id.IsValid() || int(id) >= len(m.nodes) {
		return nil
	}
	return &m.nodes[id]
}

// NumNodes reports the number of allocated nodes.
func (m *Module) NumNodes() int { return len(m.nodes) - 1 }

func (m *Module) alloc(n Node) NodeID {
	id := nodeID(len(m.nodes))
	n.uses = make(map[Use]struct{})
	m.nodes = append(m.nodes, n)
	return id
}

// NewParameter appends a parameter to g.
func (m *Module) NewParameter(g GraphID, name string) NodeID {
	id := m.alloc(Node{Kind: KindParameter, Graph: g, Debug: Debug{Name: name}})
	if gr := m.Graph(g); gr != nil {
		gr.Params = append(gr.Params, id)
	}
	return id
}

// NewApply creates an application owned by g and registers a use on every
// input at its position.
func (m *Module) NewApply(g GraphID, inputs ...NodeID) NodeID {
	id := m.alloc(Node{Kind: KindApply, Graph: g})
	n := &m.nodes[id]
	n.inputs = append(make([]NodeID, 0, len(inputs)), inputs...)
	for i, in := range inputs {
		m.addUse(in, id, i)
	}
	return id
}

// NewConstant creates a constant node; constants belong to no graph.
func (m *Module) NewConstant(value any) NodeID {
	return m.alloc(Node{Kind: KindConstant, Value: value, Graph: NoGraphID})
}

// SetName sets the debug name of a node.
func (m *Module) SetName(id NodeID, name string) {
	if n := m.Node(id); n != nil {
		n.Debug.Name = name
	}
}

// SetReturn builds return(result) in g and installs it as the graph output.
func (m *Module) SetReturn(g GraphID, result NodeID) NodeID {
	ret := m.NewApply(g, m.NewConstant(prim.Return), result)
	if gr := m.Graph(g); gr != nil {
		gr.Return = ret
	}
	return ret
}

// Result returns the node a graph returns, if the return is set.
func (m *Module) Result(g GraphID) (NodeID, bool) {
	gr := m.Graph(g)
	if gr == nil || !gr.Return.IsValid() {
		return NoNodeID, false
	}
	ret := m.Node(gr.Return)
	if len(ret.inputs) < 2 {
		return NoNodeID, false
	}
	return ret.inputs[1], true
}

// Copy duplicates a node with the same kind, value, graph and inputs; the
// copy's inputs register their own uses. Debug info is not copied.
func (m *Module) Copy(id NodeID) NodeID {
	src := m.Node(id)
	if src == nil {
		return NoNodeID
	}
	switch src.Kind {
	case KindApply:
		return m.NewApply(src.Graph, src.inputs...)
	case KindParameter:
		return m.alloc(Node{Kind: KindParameter, Graph: src.Graph})
	default:
		return m.NewConstant(src.Value)
	}
}
