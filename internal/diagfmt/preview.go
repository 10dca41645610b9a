package diagfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"loom/internal/source"
)

// snippet holds the source line a location points into.
type snippet struct {
	path string
	text string
	col  uint32 // 1-based byte column inside text
}

// lookup finds the source line for loc. The location's span points into the
// registered snippet, so the line is resolved there rather than by loc.Line.
func lookup(fs *source.FileSet, loc source.Location, mode PathMode) (snippet, bool) {
	sn := snippet{path: loc.Origin, col: loc.Column}
	if fs == nil {
		return sn, false
	}
	f := fs.Get(loc.Span.File)
	if f == nil || f.Path != loc.Origin {
		return sn, false
	}
	sn.path = f.FormatPath(mode.mode(), fs.BaseDir())
	start, _ := fs.Resolve(loc.Span)
	sn.text = strings.TrimRight(f.Line(start.Line), "\r")
	if sn.text == "" {
		return sn, false
	}
	return sn, true
}

// caretLine returns the line and a matching caret marker. Display widths
// account for tabs and wide runes; width > 0 truncates the line.
func caretLine(text string, col uint32, width int) (line, caret string) {
	idx := int(col) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(text) {
		idx = len(text)
	}
	pad := runewidth.StringWidth(expandTabs(text[:idx]))
	line = expandTabs(text)
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return line, strings.Repeat(" ", pad) + "^"
}

func expandTabs(s string) string { return strings.ReplaceAll(s, "\t", "    ") }
