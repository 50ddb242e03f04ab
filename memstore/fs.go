package memstore

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/challenai/hdao/backend"
)

type fsNode struct {
	dir   bool
	data  []byte
	mtime time.Time
}

// FileSystem is an in-memory hierarchical file store implementing
// backend.FileSystem. Paths are slash separated and rooted at "/".
type FileSystem struct {
	faults

	mu     sync.Mutex
	nodes  map[string]*fsNode
	closed bool

	// PageSize bounds the entries returned per DirLister.Next call.
	PageSize int

	streams counter
}

var _ backend.FileSystem = (*FileSystem)(nil)

func NewFileSystem() *FileSystem {
	return &FileSystem{
		nodes:    map[string]*fsNode{"/": {dir: true, mtime: time.Now()}},
		PageSize: 1000,
	}
}

// OpenStreams returns the number of readers, writers and listers not yet
// closed.
func (f *FileSystem) OpenStreams() int { return f.streams.get() }

// ReadFile returns the content of a file, for tests.
func (f *FileSystem) ReadFile(p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[clean(p)]
	if !ok || n.dir {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), n.data...), nil
}

// WriteFile creates a file and its parents, for tests.
func (f *FileSystem) WriteFile(p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if err := f.mkdirs(path.Dir(p)); err != nil {
		return err
	}
	f.nodes[p] = &fsNode{data: append([]byte(nil), data...), mtime: time.Now()}
	return nil
}

func clean(p string) string {
	return path.Clean("/" + p)
}

func under(p, dir string) bool {
	if dir == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, dir+"/")
}

func (f *FileSystem) check(op, p string) error {
	if f.closed {
		return &fs.PathError{Op: op, Path: p, Err: fs.ErrClosed}
	}
	return f.take(op)
}

func (f *FileSystem) status(p string, n *fsNode) backend.FileStatus {
	mode := fs.FileMode(0o644)
	if n.dir {
		mode = fs.ModeDir | 0o755
	}
	return backend.FileStatus{
		Path:    p,
		Name:    path.Base(p),
		IsDir:   n.dir,
		Size:    int64(len(n.data)),
		Mode:    mode,
		ModTime: n.mtime,
	}
}

func (f *FileSystem) Stat(ctx context.Context, p string) (backend.FileStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("stat", p); err != nil {
		return backend.FileStatus{}, err
	}
	n, ok := f.nodes[clean(p)]
	if !ok {
		return backend.FileStatus{}, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return f.status(clean(p), n), nil
}

func (f *FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("exists", p); err != nil {
		return false, err
	}
	_, ok := f.nodes[clean(p)]
	return ok, nil
}

func (f *FileSystem) Mkdirs(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("mkdirs", p); err != nil {
		return err
	}
	return f.mkdirs(clean(p))
}

func (f *FileSystem) mkdirs(p string) error {
	if n, ok := f.nodes[p]; ok {
		if !n.dir {
			return &fs.PathError{Op: "mkdirs", Path: p, Err: fs.ErrExist}
		}
		return nil
	}
	if err := f.mkdirs(path.Dir(p)); err != nil {
		return err
	}
	f.nodes[p] = &fsNode{dir: true, mtime: time.Now()}
	return nil
}

func (f *FileSystem) Delete(ctx context.Context, p string, recursive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("delete", p); err != nil {
		return err
	}
	p = clean(p)
	n, ok := f.nodes[p]
	if !ok {
		return &fs.PathError{Op: "delete", Path: p, Err: fs.ErrNotExist}
	}
	if p == "/" {
		return &fs.PathError{Op: "delete", Path: p, Err: fs.ErrPermission}
	}
	if n.dir {
		var children []string
		for k := range f.nodes {
			if under(k, p) {
				children = append(children, k)
			}
		}
		if len(children) > 0 && !recursive {
			return &fs.PathError{Op: "delete", Path: p, Err: errorf("PathIsNotEmptyDirectoryException", "%s is non empty", p)}
		}
		for _, k := range children {
			delete(f.nodes, k)
		}
	}
	delete(f.nodes, p)
	return nil
}

func (f *FileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("rename", oldPath); err != nil {
		return err
	}
	oldPath, newPath = clean(oldPath), clean(newPath)
	n, ok := f.nodes[oldPath]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	if oldPath == newPath {
		return nil
	}
	if parent, ok := f.nodes[path.Dir(newPath)]; !ok || !parent.dir {
		return &fs.PathError{Op: "rename", Path: newPath, Err: errorf("ParentNotDirectoryException", "parent of %s does not exist", newPath)}
	}
	if under(newPath, oldPath) {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrInvalid}
	}
	if dst, ok := f.nodes[newPath]; ok && (dst.dir || n.dir) {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	}
	moved := map[string]*fsNode{newPath: n}
	for k, child := range f.nodes {
		if under(k, oldPath) {
			moved[newPath+strings.TrimPrefix(k, oldPath)] = child
			delete(f.nodes, k)
		}
	}
	delete(f.nodes, oldPath)
	for k, v := range moved {
		f.nodes[k] = v
	}
	return nil
}

func (f *FileSystem) ListStatus(ctx context.Context, dir string) (backend.DirLister, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("listStatus", dir); err != nil {
		return nil, err
	}
	dir = clean(dir)
	n, ok := f.nodes[dir]
	if !ok {
		return nil, &fs.PathError{Op: "listStatus", Path: dir, Err: fs.ErrNotExist}
	}
	if !n.dir {
		f.streams.inc()
		return &memLister{f: f, entries: []backend.FileStatus{f.status(dir, n)}}, nil
	}
	var entries []backend.FileStatus
	for k, child := range f.nodes {
		if k != dir && path.Dir(k) == dir {
			entries = append(entries, f.status(k, child))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	f.streams.inc()
	return &memLister{f: f, entries: entries}, nil
}

func (f *FileSystem) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("open", p); err != nil {
		return nil, err
	}
	n, ok := f.nodes[clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if n.dir {
		return nil, &fs.PathError{Op: "open", Path: p, Err: errorf("FileNotFoundException", "%s is a directory", p)}
	}
	f.streams.inc()
	return &memReader{f: f, r: bytes.NewReader(append([]byte(nil), n.data...))}, nil
}

// Create requires the parent directory to exist.
func (f *FileSystem) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("create", p); err != nil {
		return nil, err
	}
	p = clean(p)
	if parent, ok := f.nodes[path.Dir(p)]; !ok || !parent.dir {
		return nil, &fs.PathError{Op: "create", Path: p, Err: errorf("ParentNotDirectoryException", "parent of %s does not exist", p)}
	}
	if n, ok := f.nodes[p]; ok && n.dir {
		return nil, &fs.PathError{Op: "create", Path: p, Err: fs.ErrExist}
	}
	f.nodes[p] = &fsNode{mtime: time.Now()}
	f.streams.inc()
	return &memWriter{f: f, path: p}, nil
}

func (f *FileSystem) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type memLister struct {
	f       *FileSystem
	entries []backend.FileStatus
	closed  bool
}

func (l *memLister) Next(ctx context.Context) ([]backend.FileStatus, error) {
	if err := l.f.take("listNext"); err != nil {
		return nil, err
	}
	if len(l.entries) == 0 {
		return nil, io.EOF
	}
	n := l.f.PageSize
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	page := l.entries[:n]
	l.entries = l.entries[n:]
	return page, nil
}

func (l *memLister) Close() error {
	if !l.closed {
		l.closed = true
		l.f.streams.dec()
	}
	return nil
}

type memReader struct {
	f      *FileSystem
	r      *bytes.Reader
	closed bool
}

func (r *memReader) Read(p []byte) (int, error) {
	if err := r.f.take("read"); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func (r *memReader) Close() error {
	if !r.closed {
		r.closed = true
		r.f.streams.dec()
	}
	return nil
}

// memWriter publishes its content on Close, like an HDFS file becoming
// visible once its last block is committed.
type memWriter struct {
	f      *FileSystem
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	if err := w.f.take("write"); err != nil {
		return 0, err
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.f.streams.dec()
	if err := w.f.take("closeWriter"); err != nil {
		return err
	}
	w.f.mu.Lock()
	defer w.f.mu.Unlock()
	if n, ok := w.f.nodes[w.path]; ok && !n.dir {
		n.data = append([]byte(nil), w.buf.Bytes()...)
		n.mtime = time.Now()
	}
	return nil
}
