package main

import (
	"fmt"
	"io"
	"regexp"

	"github.com/sanity-io/litter"

	"loom/internal/dag"
	"loom/internal/driver"
	"loom/internal/project"
	"loom/internal/surface"
)

// dumpOptions hide bookkeeping that only bloats the dump.
var dumpOptions = litter.Options{
	StripPackageNames: true,
	HidePrivateFields: true,
	HideZeroValues:    true,
	FieldExclusions:   regexp.MustCompile(`^Span$`),
}

// emitUnit prints what a successfully compiled unit produced.
func emitUnit(w io.Writer, u *driver.Unit, mode project.Emit) error {
	if u == nil || u.Lowered == nil {
		return nil
	}
	globals := u.Lowered.Globals
	switch mode {
	case project.EmitGraph:
		if u.Module == nil {
			return fmt.Errorf("%s: graph was not built", u.Path)
		}
		return u.Module.Dump(w)
	case project.EmitDeps:
		return dag.Analyze(globals).Fprint(w)
	case project.EmitDump:
		for _, name := range globals.Names() {
			lam, _ := globals.Lookup(name)
			if _, err := fmt.Fprintf(w, "%s = %s\n", name, dumpOptions.Sdump(lam)); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, name := range globals.Names() {
			lam, _ := globals.Lookup(name)
			if _, err := fmt.Fprintf(w, "%s = ", name); err != nil {
				return err
			}
			if err := surface.Fprint(w, lam); err != nil {
				return err
			}
		}
		return nil
	}
}

// emitUnits prints every unit that compiled; with more than one a header
// names the file.
func emitUnits(w io.Writer, units []*driver.Unit, mode project.Emit) error {
	for _, u := range units {
		if u.Err != nil {
			continue
		}
		if len(units) > 1 {
			if _, err := fmt.Fprintf(w, "# %s\n", u.Path); err != nil {
				return err
			}
		}
		if err := emitUnit(w, u, mode); err != nil {
			return err
		}
	}
	return nil
}
