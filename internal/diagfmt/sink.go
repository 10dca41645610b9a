package diagfmt

import (
	"fmt"
	"io"
	"os"

	"loom/internal/diag"
	"loom/internal/source"
)

// Sink prints errors raised by the pipeline. Syntax errors get a traceback
// pointing into the offending source line; everything else goes to Fallback.
type Sink struct {
	W        io.Writer
	Files    *source.FileSet
	Color    bool
	PathMode PathMode
	// Fallback handles non-syntax errors; nil prints "error: <err>" to W.
	Fallback func(error)
}

// NewSink returns a sink writing to stderr.
func NewSink(fs *source.FileSet) *Sink {
	return &Sink{W: os.Stderr, Files: fs}
}

// Handle renders err. A nil error is ignored.
//
//	SyntaxError: Missing return statement.
//	  File "mod.py", line 3, column 5
//	    x = 1
//	    ^
func (s *Sink) Handle(err error) {
	if err == nil {
		return
	}
	w := s.W
	if w == nil {
		w = os.Stderr
	}
	se, ok := diag.AsSyntaxError(err)
	if !ok {
		if s.Fallback != nil {
			s.Fallback(err)
			return
		}
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	pal := newPalette(s.Color)
	fmt.Fprintf(w, "%s: %s\n", pal.err.Sprint(se.Kind()), se.Message)
	if se.Location.IsZero() {
		return
	}
	sn, found := lookup(s.Files, se.Location, s.PathMode)
	fmt.Fprintf(w, "  File %q, line %d, column %d\n", sn.path, se.Location.Line, se.Location.Column)
	if found {
		line, caret := caretLine(sn.text, sn.col, 0)
		fmt.Fprintf(w, "    %s\n    %s\n", line, pal.caret.Sprint(caret))
	}
}
