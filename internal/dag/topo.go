package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []DefID   // линейный порядок (только определённые имена)
	Batches [][]DefID // волны независимых определений
	Cyclic  bool
	Cycles  []DefID // узлы, оставшиеся в цикле, и всё, что от них зависит
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]DefID, 0, nodeCount),
		Batches: make([][]DefID, 0),
	}

	active := 0
	current := make([]DefID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toDefID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]DefID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toDefID(i))
			}
		}
	}

	return topo
}

func toDefID(i int) DefID {
	id, err := safecast.Conv[DefID](i)
	if err != nil {
		panic(fmt.Errorf("definition id overflow: %w", err))
	}
	return id
}
