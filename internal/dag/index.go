// Package dag orders the global definitions of a unit by the references
// between them: callees come before their callers.
package dag

import (
	"sort"

	"loom/internal/symbols"
)

type DefID uint32

type Index struct {
	NameToID map[string]DefID
	IDToName []string
}

// собрать определённые и упомянутые имена, sort.Strings, раздать ID по порядку
func BuildIndex(globals *symbols.Globals) Index {
	uniq := make(map[string]struct{}, globals.Len())
	for _, name := range globals.Names() {
		uniq[name] = struct{}{}
		lam, _ := globals.Lookup(name)
		for _, ref := range refs(lam) {
			uniq[ref] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]DefID, len(names))
	for i, name := range names {
		nameToID[name] = DefID(i)
	}

	return Index{
		NameToID: nameToID,
		IDToName: names,
	}
}

func (idx Index) Names(ids []DefID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
