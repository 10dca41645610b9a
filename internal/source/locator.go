package source

import "fmt"

// Location pins a construct to its origin for diagnostics. Line includes the
// locator's line offset, so it refers to the enclosing file rather than to the
// snippet that was handed to the parser.
type Location struct {
	Origin string
	Line   uint32 // 1-based
	Column uint32 // 1-based, in bytes
	Span   Span   // byte range inside the registered snippet
}

// IsZero reports whether the location carries no position at all.
func (l Location) IsZero() bool {
	return l.Origin == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Origin, l.Line, l.Column)
}

// Locator turns parser positions of one snippet into Locations.
//
// A snippet is the literal source text of a single definition; LineOffset is
// the line of the enclosing file on which the snippet starts.
type Locator struct {
	Origin     string
	LineOffset uint32
	File       FileID
}

// NewLocator registers src in fs as a virtual file and returns a locator for it.
// A zero lineOffset is treated as 1.
func NewLocator(fs *FileSet, origin string, lineOffset uint32, src []byte) Locator {
	if lineOffset == 0 {
		lineOffset = 1
	}
	id := fs.AddVirtual(origin, src)
	return Locator{Origin: origin, LineOffset: lineOffset, File: id}
}

// At converts a 0-based row/column pair and byte range reported by the parser.
func (l Locator) At(row, col, start, end uint32) Location {
	return Location{
		Origin: l.Origin,
		Line:   row + l.LineOffset,
		Column: col + 1,
		Span:   Span{File: l.File, Start: start, End: end},
	}
}
