package anf

import (
	"fmt"
)

func (m *Module) addUse(target, user NodeID, index int) {
	if t := m.Node(target); t != nil {
		t.uses[Use{Node: user, Index: index}] = struct{}{}
	}
}

func (m *Module) dropUse(target, user NodeID, index int) {
	if t := m.Node(target); t != nil {
		delete(t.uses, Use{Node: user, Index: index})
	}
}

func (m *Module) apply(id NodeID) (*Node, error) {
	n := m.Node(id)
	if n == nil {
		return nil, fmt.Errorf("anf: invalid node %d", id)
	}
	if n.Kind != KindApply {
		return nil, fmt.Errorf("anf: node %d is a %s, only applications have inputs", id, n.Kind)
	}
	return n, nil
}

// Input returns input i of n, or NoNodeID when out of range.
func (m *Module) Input(n NodeID, i int) NodeID {
	node := m.Node(n)
	if node == nil || i < 0 || i >= len(node.inputs) {
		return NoNodeID
	}
	return node.inputs[i]
}

// NumInputs reports the number of inputs of n.
func (m *Module) NumInputs(n NodeID) int {
	if node := m.Node(n); node != nil {
		return len(node.inputs)
	}
	return 0
}

// Inputs returns a copy of the input list of n.
func (m *Module) Inputs(n NodeID) []NodeID {
	node := m.Node(n)
	if node == nil {
		return nil
	}
	return append([]NodeID(nil), node.inputs...)
}

// Uses returns the reverse edges of n in unspecified order.
func (m *Module) Uses(n NodeID) []Use {
	node := m.Node(n)
	if node == nil {
		return nil
	}
	out := make([]Use, 0, len(node.uses))
	for u := range node.uses {
		out = append(out, u)
	}
	return out
}

// SetInput replaces input i of n with v.
func (m *Module) SetInput(n NodeID, i int, v NodeID) error {
	node, err := m.apply(n)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(node.inputs) {
		return fmt.Errorf("anf: input index %d out of range [0,%d)", i, len(node.inputs))
	}
	m.dropUse(node.inputs[i], n, i)
	m.addUse(v, n, i)
	node.inputs[i] = v
	return nil
}

// InsertInput inserts v at position i, shifting later inputs right.
// i == NumInputs(n) appends.
func (m *Module) InsertInput(n NodeID, i int, v NodeID) error {
	node, err := m.apply(n)
	if err != nil {
		return err
	}
	if i < 0 || i > len(node.inputs) {
		return fmt.Errorf("anf: insert index %d out of range [0,%d]", i, len(node.inputs))
	}
	// tail first, so a node used at j and j+1 never loses an edge
	for j := len(node.inputs) - 1; j >= i; j-- {
		m.dropUse(node.inputs[j], n, j)
		m.addUse(node.inputs[j], n, j+1)
	}
	m.addUse(v, n, i)
	node.inputs = append(node.inputs, NoNodeID)
	copy(node.inputs[i+1:], node.inputs[i:])
	node.inputs[i] = v
	return nil
}

// AppendInput adds v as the last input of n.
func (m *Module) AppendInput(n NodeID, v NodeID) error {
	return m.InsertInput(n, m.NumInputs(n), v)
}

// DeleteInput removes input i, shifting later inputs left.
func (m *Module) DeleteInput(n NodeID, i int) error {
	node, err := m.apply(n)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(node.inputs) {
		return fmt.Errorf("anf: delete index %d out of range [0,%d)", i, len(node.inputs))
	}
	m.dropUse(node.inputs[i], n, i)
	for j := i + 1; j < len(node.inputs); j++ {
		m.dropUse(node.inputs[j], n, j)
		m.addUse(node.inputs[j], n, j-1)
	}
	node.inputs = append(node.inputs[:i], node.inputs[i+1:]...)
	return nil
}

// SetInputs replaces the whole input list of n.
func (m *Module) SetInputs(n NodeID, inputs ...NodeID) error {
	node, err := m.apply(n)
	if err != nil {
		return err
	}
	for i, old := range node.inputs {
		m.dropUse(old, n, i)
	}
	node.inputs = append(make([]NodeID, 0, len(inputs)), inputs...)
	for i, in := range inputs {
		m.addUse(in, n, i)
	}
	return nil
}
