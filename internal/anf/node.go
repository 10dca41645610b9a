package anf

import (
	"loom/internal/source"
)

// NodeKind distinguishes the three node variants.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota
	KindApply
	KindParameter
	KindConstant
)

func (k NodeKind) String() string {
	switch k {
	case KindApply:
		return "APPLY"
	case KindParameter:
		return "PARAMETER"
	case KindConstant:
		return "CONSTANT"
	default:
		return "INVALID"
	}
}

// Use is one reverse edge: Node reads the owner at input position Index.
type Use struct {
	Node  NodeID
	Index int
}

// GlobalRef is the constant value of a reference to a global that is not
// defined in the module.
type GlobalRef struct {
	Name string
}

func (g GlobalRef) String() string { return g.Name }

// Debug carries information used only for printing.
type Debug struct {
	Name string
	Loc  source.Location
}

// Node is an application, a parameter or a constant.
//
// inputs are def-use edges in call order (callee first for applications);
// uses is the mirrored use-def set and is only ever edited by Module methods.
type Node struct {
	Kind  NodeKind
	Value any // constants only: literal, *prim.Primitive, GraphID or GlobalRef
	Graph GraphID
	Debug Debug

	inputs []NodeID
	uses   map[Use]struct{}
}

// Graph is one function: ordered parameters and the return application.
type Graph struct {
	Params []NodeID
	Return NodeID // application of the return primitive, NoNodeID until set
	Debug  Debug
}
