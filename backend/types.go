package backend

import (
	"bytes"
	"os"
	"strings"
	"time"
)

// Bytes is the single byte-sequence type used for row keys, column
// families, qualifiers and values.
type Bytes []byte

func (b Bytes) String() string {
	return string(b)
}

// Equal reports whether b and o hold the same bytes.
func (b Bytes) Equal(o Bytes) bool {
	return bytes.Equal(b, o)
}

// Clone returns a copy that does not alias b.
func (b Bytes) Clone() Bytes {
	if b == nil {
		return nil
	}
	return append(Bytes{}, b...)
}

// Cell is the smallest addressable unit of a table.
type Cell struct {
	Row       Bytes
	Family    Bytes
	Qualifier Bytes
	Value     Bytes
	Timestamp int64
}

// Column returns "family:qualifier".
func (c Cell) Column() string {
	return string(c.Family) + ":" + string(c.Qualifier)
}

// TableDescriptor names a table and its column families. Families is an
// ordered set: names are unique and keep creation order.
type TableDescriptor struct {
	Name     string
	Families []string
}

// NewTableDescriptor builds a descriptor, dropping duplicate families.
func NewTableDescriptor(name string, families ...string) TableDescriptor {
	d := TableDescriptor{Name: name}
	d.AddFamilies(families...)
	return d
}

// HasFamily reports whether family is part of the descriptor.
func (d TableDescriptor) HasFamily(family string) bool {
	for _, f := range d.Families {
		if f == family {
			return true
		}
	}
	return false
}

// AddFamilies appends families not already present and returns how many
// were added.
func (d *TableDescriptor) AddFamilies(families ...string) int {
	n := 0
	for _, f := range families {
		if d.HasFamily(f) {
			continue
		}
		d.Families = append(d.Families, f)
		n++
	}
	return n
}

// RemoveFamily drops family and reports whether it was present.
func (d *TableDescriptor) RemoveFamily(family string) bool {
	for i, f := range d.Families {
		if f == family {
			d.Families = append(d.Families[:i:i], d.Families[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (d TableDescriptor) Clone() TableDescriptor {
	return TableDescriptor{Name: d.Name, Families: append([]string(nil), d.Families...)}
}

// SplitTableName splits "namespace:table". Names without a namespace belong
// to the "default" namespace.
func SplitTableName(name string) (namespace, table string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "default", name
}

// JoinTableName is the inverse of SplitTableName. The default namespace is
// omitted.
func JoinTableName(namespace, table string) string {
	if namespace == "" || namespace == "default" {
		return table
	}
	return namespace + ":" + table
}

// FileStatus describes one entry of a FileSystem.
type FileStatus struct {
	Path    string
	Name    string
	IsDir   bool
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}
