package testkit

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"loom/internal/anf"
	"loom/internal/surface"
	"loom/internal/symbols"
)

// CheckClosedDefinitions verifies that every registered global definition is
// a closed term: the only free symbols are builtins and globals.
func CheckClosedDefinitions(globals *symbols.Globals) error {
	if globals == nil {
		return fmt.Errorf("nil globals table")
	}
	var errs []error
	for _, name := range globals.Names() {
		lam, ok := globals.Lookup(name)
		if !ok || lam == nil {
			errs = append(errs, fmt.Errorf("%s: registered without a definition", name))
			continue
		}
		if free := surface.FreeVars(lam); len(free) > 0 {
			labels := make([]string, len(free))
			for i, s := range free {
				labels[i] = s.Label
			}
			errs = append(errs, fmt.Errorf("%s: free local symbols %s", name, strings.Join(labels, ", ")))
		}
	}
	return errors.Join(errs...)
}

// CheckEdgeSymmetry re-derives the use sets of a module from its input lists
// through the public API and compares them with the stored ones:
// (n, i) ∈ uses(m) ⇔ inputs(n)[i] == m.
func CheckEdgeSymmetry(m *anf.Module) error {
	if m == nil {
		return fmt.Errorf("nil module")
	}
	want := make(map[anf.NodeID]map[anf.Use]struct{})
	for i := 1; i <= m.NumNodes(); i++ {
		v, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("node id overflow: %w", err)
		}
		id := anf.NodeID(v)
		for idx, in := range m.Inputs(id) {
			if want[in] == nil {
				want[in] = make(map[anf.Use]struct{})
			}
			want[in][anf.Use{Node: id, Index: idx}] = struct{}{}
		}
	}
	var errs []error
	for i := 1; i <= m.NumNodes(); i++ {
		v, err := safecast.Conv[uint32](i)
		if err != nil {
			return fmt.Errorf("node id overflow: %w", err)
		}
		id := anf.NodeID(v)
		got := m.Uses(id)
		if len(got) != len(want[id]) {
			errs = append(errs, fmt.Errorf("node %d: %d uses recorded, %d derived from inputs", id, len(got), len(want[id])))
			continue
		}
		for _, u := range got {
			if _, ok := want[id][u]; !ok {
				errs = append(errs, fmt.Errorf("node %d: use (%d, %d) has no matching input", id, u.Node, u.Index))
			}
		}
	}
	return errors.Join(errs...)
}
