package dag

import (
	"slices"

	"loom/internal/symbols"
)

type Graph struct {
	Edges   [][]DefID // Edges[callee] = []caller
	Indeg   []int     // входящие степени для Kahn (только определённые вызываемые, без self-рёбер)
	Present []bool    // имя определено в таблице, а не только упомянуто
	SelfRef []bool    // определение ссылается само на себя
}

func BuildGraph(idx Index, globals *symbols.Globals) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]DefID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
		SelfRef: make([]bool, nodeCount),
	}
	for _, name := range globals.Names() {
		g.Present[int(idx.NameToID[name])] = true
	}

	for _, name := range globals.Names() {
		from := idx.NameToID[name]
		lam, _ := globals.Lookup(name)
		for _, ref := range refs(lam) {
			to := idx.NameToID[ref]
			if to == from {
				g.SelfRef[int(from)] = true
				continue
			}
			if !g.Present[int(to)] {
				// внешние имена в порядок не входят
				continue
			}
			g.Edges[int(to)] = append(g.Edges[int(to)], from)
			g.Indeg[int(from)]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}
