package anf

import (
	"fmt"

	"fortio.org/safecast"
)

// NodeID identifies a node in the module arena.
type NodeID uint32

// GraphID identifies a graph in the module arena. A GraphID stored as the
// value of a Constant node is a reference to that function.
type GraphID uint32

const (
	// NoNodeID marks the absence of a node reference.
	NoNodeID NodeID = 0
	// NoGraphID marks the absence of a graph (constants own none).
	NoGraphID GraphID = 0
)

// IsValid reports whether the ID refers to an allocated node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// IsValid reports whether the ID refers to an allocated graph.
func (id GraphID) IsValid() bool { return id != NoGraphID }

// nodeID converts an arena index.
func nodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
