package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"loom/internal/diag"
	"loom/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с кареткой, затем Notes в том же формате.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sn, ok := lookup(fs, d.Primary, opts.PathMode)
		fmt.Fprintf(w, "%s %s %s: %s\n",
			pal.path.Sprint(position(sn.path, d.Primary)),
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		if ok {
			line, caret := caretLine(sn.text, sn.col, int(opts.Width))
			fmt.Fprintf(w, "    %s\n    %s\n", line, pal.caret.Sprint(caret))
		}
		if !opts.ShowNotes && d.Code != diag.ObsTimings {
			continue
		}
		for _, n := range d.Notes {
			nsn, _ := lookup(fs, n.Loc, opts.PathMode)
			if n.Loc.IsZero() {
				fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s %s\n", pal.note.Sprint("note:"), position(nsn.path, n.Loc), n.Msg)
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s %d more diagnostics not shown (limit %d)\n", pal.note.Sprint("note:"), n, bag.Len())
	}
}

func position(path string, loc source.Location) string {
	if loc.IsZero() {
		return "<unknown>:"
	}
	return fmt.Sprintf("%s:%d:%d:", path, loc.Line, loc.Column)
}

type palette struct {
	path, code, caret, note, err, warn, info *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		path:  mk(color.Bold),
		code:  mk(color.FgHiBlack),
		caret: mk(color.FgGreen, color.Bold),
		note:  mk(color.FgCyan),
		err:   mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow, color.Bold),
		info:  mk(color.FgBlue),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}
