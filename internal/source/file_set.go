package source

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"fortio.org/safecast"
)

// FileSet owns every source of a compilation. Files are added before the
// parallel phase starts and only read afterwards.
type FileSet struct {
	files   []File
	byPath  map[string]FileID // последняя версия файла по пути
	baseDir string
}

func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase creates a FileSet whose relative paths are shown
// against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{byPath: make(map[string]FileID), baseDir: baseDir}
}

// BaseDir returns the display base, the working directory when unset.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add registers content as a new file. Re-adding a path creates a new
// version; older IDs stay valid.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: lineIndex(content),
		Flags:   flags,
	})
	fileSet.byPath[path] = id
	return id
}

// Load reads a Python source from disk. Sources must be UTF-8; a BOM and CRLF
// line endings are normalised away.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := normalize(raw)
	if !utf8.Valid(content) {
		return 0, fmt.Errorf("%s: %w", path, ErrNotUTF8)
	}
	return fileSet.Add(path, content, flags), nil
}

// ErrNotUTF8 is returned by Load for sources that are not valid UTF-8.
var ErrNotUTF8 = errors.New("source is not valid UTF-8")

// AddVirtual registers in-memory source under name.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file, nil for an unknown id.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// Lookup returns the latest version registered under path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fileSet.byPath[normalizePath(path)]
	return id, ok
}

func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}
