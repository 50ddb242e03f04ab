package hdao

import (
	"strings"
	"time"

	"github.com/challenai/hdao/backend"
)

// Bytes is the type of row keys, families, qualifiers and values.
type Bytes = backend.Bytes

// Cell is one (row, family, qualifier, value, timestamp) tuple.
type Cell = backend.Cell

// TableDescriptor is a table name and its ordered set of column families.
type TableDescriptor = backend.TableDescriptor

// Column is a family:qualifier coordinate with its value, used to write
// several cells of one row at once.
type Column struct {
	Family    Bytes
	Qualifier Bytes
	Value     Bytes
}

// EntryKind tells files and directories apart.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

func (k EntryKind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// PathEntry is one node of the file store namespace.
type PathEntry struct {
	Path    string
	Name    string
	Kind    EntryKind
	Size    int64
	ModTime time.Time
	// Depth is the nesting level below the listed directory, set by ListTree.
	Depth int
}

func (e PathEntry) IsDir() bool { return e.Kind == KindDirectory }

// Display renders the entry for a tree listing: directories carry one "-"
// per nesting level plus one.
func (e PathEntry) Display() string {
	if e.IsDir() {
		return strings.Repeat("-", e.Depth+1) + e.Name
	}
	return strings.Repeat(" ", e.Depth) + e.Name
}

func toPathEntry(st backend.FileStatus, depth int) PathEntry {
	kind := KindFile
	if st.IsDir {
		kind = KindDirectory
	}
	return PathEntry{
		Path:    st.Path,
		Name:    st.Name,
		Kind:    kind,
		Size:    st.Size,
		ModTime: st.ModTime,
		Depth:   depth,
	}
}
