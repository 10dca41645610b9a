package source

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
)

type (
	// FileID identifies a file within its FileSet.
	FileID uint32
	// FileFlags records how a file was obtained and normalised.
	FileFlags uint8
)

const (
	// FileVirtual marks sources added from memory: stdin, tests, snippets.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one registered source. Content has no BOM and LF line endings.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of every '\n'
	Flags   FileFlags
}

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset; a newline belongs to the line it ends.
func (f *File) Position(off uint32) LineCol {
	// число переводов строки строго до off
	n := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	if n == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(n + 1), Col: off - f.LineIdx[n-1]}
}

// Line returns line n (1-based) without its terminator; "" when out of range.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start := 0
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	end := len(f.Content)
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders the path for display.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return normalizePath(abs)
		}
	case "relative":
		if f.Flags&FileVirtual != 0 || baseDir == "" {
			break
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			break
		}
		rel, err := filepath.Rel(baseDir, abs)
		if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
			return normalizePath(abs)
		}
		return normalizePath(rel)
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		// короткие и относительные пути как есть
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and turns CRLF into LF; lone CRs stay.
func normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(content, bom); ok {
		content = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

func lineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte("\n")))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
