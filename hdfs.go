package hdao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/challenai/hdao/backend"
)

// copyingSuffix marks an upload still in flight, like hadoop fs -put.
const copyingSuffix = "._COPYING_"

// FileStore runs path operations against a hierarchical file store. Paths are
// slash separated and absolute. A FileStore is safe for concurrent use.
type FileStore struct {
	fs   backend.FileSystem
	opts options

	mu     sync.Mutex
	closed bool
}

// NewFileStore wraps fs. The FileStore owns fs and closes it in Close.
func NewFileStore(fs backend.FileSystem, opts ...Option) (*FileStore, error) {
	if fs == nil {
		return nil, ErrConnection
	}
	return &FileStore{fs: fs, opts: applyOptions(opts)}, nil
}

// Close releases the file system connection. Calling Close more than once is
// a no-op.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	fs := s.fs
	s.fs = nil
	s.mu.Unlock()
	if fs == nil {
		return nil
	}
	return fs.Close()
}

func (s *FileStore) live() (backend.FileSystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.fs, nil
}

// guard fails with ErrRemotePathNotFound unless p exists.
func (s *FileStore) guard(ctx context.Context, op, p string) (backend.FileSystem, error) {
	fs, err := s.live()
	if err != nil {
		return nil, err
	}
	ok, err := fs.Exists(ctx, p)
	if err != nil {
		return nil, opErr(op, p, err)
	}
	if !ok {
		return nil, opErr(op, p, ErrRemotePathNotFound)
	}
	return fs, nil
}

// Exists reports whether p exists.
func (s *FileStore) Exists(ctx context.Context, p string) (bool, error) {
	fs, err := s.live()
	if err != nil {
		return false, err
	}
	ok, err := fs.Exists(ctx, p)
	if err != nil {
		return false, opErr("exists", p, err)
	}
	return ok, nil
}

// Upload copies the local file to remote, replacing any file there. When
// remote is a directory the file is stored inside it under its own name.
// Missing parent directories of the target are created. Bytes are streamed to a temporary sibling which is renamed over the target
// once complete.
func (s *FileStore) Upload(ctx context.Context, local, remote string) error {
	fs, err := s.live()
	if err != nil {
		return err
	}
	fi, err := os.Stat(local)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return opErr("upload", local, ErrLocalFileNotFound)
		}
		return opErr("upload", local, err)
	}
	if fi.IsDir() {
		return opErr("upload", local, fmt.Errorf("%s is a directory", local))
	}

	target := remote
	ok, err := fs.Exists(ctx, remote)
	if err != nil {
		return opErr("upload", remote, err)
	}
	if ok {
		st, err := fs.Stat(ctx, remote)
		if err != nil {
			return opErr("upload", remote, err)
		}
		if st.IsDir {
			target = path.Join(remote, filepath.Base(local))
		}
	}

	if err := fs.Mkdirs(ctx, path.Dir(target)); err != nil {
		return opErr("upload", target, err)
	}
	src, err := os.Open(local)
	if err != nil {
		return opErr("upload", local, err)
	}
	tmp := target + copyingSuffix + uuid.NewString()
	dst, err := fs.Create(ctx, tmp)
	if err != nil {
		src.Close()
		return opErr("upload", target, err)
	}
	if err := s.copy(dst, src, local, target); err != nil {
		if derr := fs.Delete(ctx, tmp, false); derr != nil {
			s.opts.log.Warnf("failed to remove partial upload %s: %v", tmp, derr)
		}
		return err
	}
	if err := fs.Rename(ctx, tmp, target); err != nil {
		if derr := fs.Delete(ctx, tmp, false); derr != nil {
			s.opts.log.Warnf("failed to remove partial upload %s: %v", tmp, derr)
		}
		return opErr("upload", target, err)
	}
	s.opts.log.Infof("uploaded %s to %s (%d bytes)", local, target, fi.Size())
	return nil
}

// Download copies remote to the local file, truncating it. When local is a
// directory the file is stored inside it under its remote name. Missing local
// parent directories are created.
func (s *FileStore) Download(ctx context.Context, remote, local string) error {
	fs, err := s.guard(ctx, "download", remote)
	if err != nil {
		return err
	}
	st, err := fs.Stat(ctx, remote)
	if err != nil {
		return opErr("download", remote, err)
	}
	if st.IsDir {
		return opErr("download", remote, fmt.Errorf("%s is a directory", remote))
	}
	if fi, err := os.Stat(local); err == nil && fi.IsDir() {
		local = filepath.Join(local, path.Base(remote))
	}

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return opErr("download", local, err)
	}
	src, err := fs.Open(ctx, remote)
	if err != nil {
		return opErr("download", remote, err)
	}
	dst, err := os.Create(local)
	if err != nil {
		src.Close()
		return opErr("download", local, err)
	}
	if err := s.copy(dst, src, remote, local); err != nil {
		return err
	}
	s.opts.log.Infof("downloaded %s to %s", remote, local)
	return nil
}

// copy streams src into dst and closes both before returning.
func (s *FileStore) copy(dst io.WriteCloser, src io.ReadCloser, from, to string) error {
	n, err := io.CopyBuffer(dst, src, make([]byte, s.opts.bufferSize))
	serr := src.Close()
	derr := dst.Close()
	if err == nil {
		err = derr
	}
	if err != nil {
		return &TransferError{Src: from, Dst: to, Written: n, Err: err}
	}
	if serr != nil {
		s.opts.log.Warnf("closing %s: %v", from, serr)
	}
	return nil
}

// MakeDir creates p and any missing parents.
func (s *FileStore) MakeDir(ctx context.Context, p string) error {
	fs, err := s.live()
	if err != nil {
		return err
	}
	return opErr("mkdir", p, fs.Mkdirs(ctx, p))
}

// Delete removes p. A non-empty directory needs recursive.
func (s *FileStore) Delete(ctx context.Context, p string, recursive bool) error {
	fs, err := s.guard(ctx, "delete", p)
	if err != nil {
		return err
	}
	if err := fs.Delete(ctx, p, recursive); err != nil {
		return opErr("delete", p, err)
	}
	s.opts.log.Infof("deleted %s", p)
	return nil
}

// Rename moves oldPath to newPath. The parent of newPath must exist.
func (s *FileStore) Rename(ctx context.Context, oldPath, newPath string) error {
	fs, err := s.guard(ctx, "rename", oldPath)
	if err != nil {
		return err
	}
	return opErr("rename", oldPath, fs.Rename(ctx, oldPath, newPath))
}

// List yields the immediate children of dir, one listing page at a time.
func (s *FileStore) List(ctx context.Context, dir string) iter.Seq2[PathEntry, error] {
	return func(yield func(PathEntry, error) bool) {
		fs, err := s.guard(ctx, "list", dir)
		if err != nil {
			yield(PathEntry{}, err)
			return
		}
		s.walk(ctx, fs, dir, 0, false, false, yield)
	}
}

// ListFiles yields every file below dir, depth first. Directories are not
// yielded.
func (s *FileStore) ListFiles(ctx context.Context, dir string) iter.Seq2[PathEntry, error] {
	return func(yield func(PathEntry, error) bool) {
		fs, err := s.guard(ctx, "list", dir)
		if err != nil {
			yield(PathEntry{}, err)
			return
		}
		s.walk(ctx, fs, dir, 0, true, true, yield)
	}
}

// ListTree yields everything below dir, depth first, each directory before
// its contents. Depth is set on every entry.
func (s *FileStore) ListTree(ctx context.Context, dir string) iter.Seq2[PathEntry, error] {
	return func(yield func(PathEntry, error) bool) {
		fs, err := s.guard(ctx, "list", dir)
		if err != nil {
			yield(PathEntry{}, err)
			return
		}
		s.walk(ctx, fs, dir, 0, true, false, yield)
	}
}

// walk lists dir page by page. It reports false once the consumer stopped.
// Only one lister per level is open at a time and each is closed on return.
func (s *FileStore) walk(ctx context.Context, fs backend.FileSystem, dir string, depth int, recursive, filesOnly bool, yield func(PathEntry, error) bool) bool {
	l, err := fs.ListStatus(ctx, dir)
	if err != nil {
		return yield(PathEntry{}, opErr("list", dir, err))
	}
	defer l.Close()

	for {
		if err := ctx.Err(); err != nil {
			return yield(PathEntry{}, opErr("list", dir, err))
		}
		page, err := l.Next(ctx)
		if err == io.EOF {
			return true
		}
		if err != nil {
			return yield(PathEntry{}, opErr("list", dir, err))
		}
		for _, st := range page {
			if !st.IsDir || !filesOnly {
				if !yield(toPathEntry(st, depth), nil) {
					return false
				}
			}
			if st.IsDir && recursive {
				if !s.walk(ctx, fs, st.Path, depth+1, recursive, filesOnly, yield) {
					return false
				}
			}
		}
	}
}
