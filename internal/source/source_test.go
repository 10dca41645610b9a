package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("loop.py", []byte("def f():\n    return 1\n"), 0)
	id2 := fs.Add("loop.py", []byte("def g():\n    return 2\n"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.Lookup("./loop.py")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if got := fs.Get(id1).Line(1); got != "def f():" {
		t.Fatalf("old version should stay readable, got %q", got)
	}
	if fs.Get(FileID(99)) != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("snippet", []byte("a = 1\nb = 2\n\nreturn b"))
	f := fs.Get(id)

	cases := map[uint32]string{
		0: "",
		1: "a = 1",
		2: "b = 2",
		3: "",
		4: "return b",
		5: "",
	}
	for line, want := range cases {
		if got := f.Line(line); got != want {
			t.Errorf("line %d: want %q, got %q", line, want, got)
		}
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("snippet", []byte("ab\ncd\n"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start != (LineCol{Line: 2, Col: 1}) {
		t.Fatalf("unexpected start %+v", start)
	}
	if end != (LineCol{Line: 2, Col: 3}) {
		t.Fatalf("unexpected end %+v", end)
	}

	// the newline itself belongs to the line it terminates
	nl, _ := fs.Resolve(Span{File: id, Start: 2, End: 2})
	if nl != (LineCol{Line: 1, Col: 3}) {
		t.Fatalf("unexpected newline position %+v", nl)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.py")
	content := []byte("\xEF\xBB\xBFdef f():\r\n    return 1\r\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "def f():\n    return 1\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestLoadRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.py")
	if err := os.WriteFile(path, []byte("s = '\xe9'\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileSet()
	if _, err := fs.Load(path); !errors.Is(err, ErrNotUTF8) {
		t.Fatalf("expected ErrNotUTF8, got %v", err)
	}
	if fs.Len() != 0 {
		t.Fatalf("rejected file was registered")
	}
}

func TestResolveUnknownFile(t *testing.T) {
	start, end := NewFileSet().Resolve(Span{File: 3})
	if start != (LineCol{}) || end != (LineCol{}) {
		t.Fatalf("expected zero positions, got %+v %+v", start, end)
	}
}

func TestLocatorAppliesLineOffset(t *testing.T) {
	fs := NewFileSet()
	loc := NewLocator(fs, "pkg/mod.py", 10, []byte("def f():\n    return x\n"))

	got := loc.At(1, 4, 13, 21)
	if got.Line != 11 || got.Column != 5 {
		t.Fatalf("expected 11:5, got %d:%d", got.Line, got.Column)
	}
	if got.String() != "pkg/mod.py:11:5" {
		t.Fatalf("unexpected rendering %q", got.String())
	}
	if start, _ := fs.Resolve(got.Span); fs.Get(loc.File).Line(start.Line) != "    return x" {
		t.Fatalf("locator file does not hold the snippet")
	}
}

func TestFormatPathRelative(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")
	f := &File{Path: normalizePath(filepath.Join(base, "nested", "f.py"))}
	if got := f.FormatPath("relative", base); got != "nested/f.py" {
		t.Fatalf("expected relative path, got %q", got)
	}

	outside := &File{Path: normalizePath(filepath.Join(tmp, "other", "f.py"))}
	if got := outside.FormatPath("relative", base); got != outside.Path {
		t.Fatalf("expected absolute fallback %q, got %q", outside.Path, got)
	}
}
