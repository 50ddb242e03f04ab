// Package backend defines the narrow client capability set hdao needs from a
// wide-column store and a distributed file store. Implementations live in
// package client (HBase over Thrift, HDFS) and package memstore.
package backend

import (
	"context"
	"io"
)

// Connection is a long-lived handle to a column-family store cluster.
type Connection interface {
	// Admin derives the administrative handle used for DDL.
	Admin(ctx context.Context) (Admin, error)
	// Table returns a transient handle scoped to a single operation.
	Table(ctx context.Context, name string) (Table, error)
	Close() error
}

// Admin performs schema operations.
type Admin interface {
	TableExists(ctx context.Context, name string) (bool, error)
	ListTables(ctx context.Context) ([]string, error)
	CreateTable(ctx context.Context, desc TableDescriptor) error
	TableDescriptor(ctx context.Context, name string) (TableDescriptor, error)
	// AddColumnFamily adds one family with server default settings. The
	// settings of the existing families are left untouched.
	AddColumnFamily(ctx context.Context, table string, family Bytes) error
	DisableTable(ctx context.Context, name string) error
	EnableTable(ctx context.Context, name string) error
	IsTableEnabled(ctx context.Context, name string) (bool, error)
	// DeleteTable drops a disabled table.
	DeleteTable(ctx context.Context, name string) error
	DeleteColumnFamily(ctx context.Context, table string, family Bytes) error
	Close() error
}

// Table is a per-operation handle on one table. It is not safe to share
// between goroutines.
type Table interface {
	Put(ctx context.Context, row Bytes, cells []Cell) error
	Delete(ctx context.Context, row Bytes) error
	// DeleteBatch deletes rows in one request and returns the keys the
	// backend reported as not deleted.
	DeleteBatch(ctx context.Context, rows []Bytes) (failed []Bytes, err error)
	Get(ctx context.Context, row Bytes) ([]Cell, error)
	Scan(ctx context.Context, spec ScanSpec) (Scanner, error)
	Append(ctx context.Context, row Bytes, cells []Cell) ([]Cell, error)
	Close() error
}

// ScanSpec bounds a scan. Empty StartRow/StopRow mean the table edges.
type ScanSpec struct {
	StartRow Bytes
	StopRow  Bytes
	Families []Bytes
	// Batch is the number of rows fetched per round trip.
	Batch int32
}

// Scanner is a server-side cursor. Next returns the cells of the next row in
// key order, or io.EOF when the scan is exhausted.
type Scanner interface {
	Next(ctx context.Context) ([]Cell, error)
	Close() error
}

// FileSystem is a hierarchical file store.
type FileSystem interface {
	Stat(ctx context.Context, path string) (FileStatus, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Mkdirs creates path and any missing parents. Existing directories are
	// not an error.
	Mkdirs(ctx context.Context, path string) error
	Delete(ctx context.Context, path string, recursive bool) error
	// Rename moves oldPath to newPath, replacing a file at newPath. The
	// parent of newPath must exist.
	Rename(ctx context.Context, oldPath, newPath string) error
	// ListStatus opens a lister over the immediate children of dir.
	ListStatus(ctx context.Context, dir string) (DirLister, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Create opens a new file for writing, truncating an existing one.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Close() error
}

// DirLister pages through a directory. Next returns io.EOF after the last
// page.
type DirLister interface {
	Next(ctx context.Context) ([]FileStatus, error)
	Close() error
}
