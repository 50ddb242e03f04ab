package client

import (
	"context"
	"errors"
	"io"
	"os"
	"path"

	"github.com/challenai/hdao/backend"
	"github.com/colinmarc/hdfs/v2"
)

const (
	DefaultReplication = 3
	DefaultBlockSize   = int64(128 << 20)
	// listPage is the number of entries fetched per directory listing call.
	listPage = 1000
)

// HDFSOptions configures DialHDFS.
type HDFSOptions struct {
	// Namenodes lists namenode host:port addresses; HA pairs may list both.
	Namenodes   []string
	User        string
	Replication int
	BlockSize   int64
}

// HDFSConn implements backend.FileSystem on the HDFS native protocol.
type HDFSConn struct {
	c           *hdfs.Client
	replication int
	blockSize   int64
}

var _ backend.FileSystem = (*HDFSConn)(nil)

// DialHDFS connects to the namenode and checks it answers a stat of "/".
func DialHDFS(ctx context.Context, opts HDFSOptions) (*HDFSConn, error) {
	if len(opts.Namenodes) == 0 {
		return nil, errors.New("no hdfs namenode configured")
	}
	c, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: opts.Namenodes,
		User:      opts.User,
	})
	if err != nil {
		return nil, err
	}
	if _, err := c.Stat("/"); err != nil {
		_ = c.Close()
		return nil, err
	}
	conn := &HDFSConn{c: c, replication: opts.Replication, blockSize: opts.BlockSize}
	if conn.replication <= 0 {
		conn.replication = DefaultReplication
	}
	if conn.blockSize <= 0 {
		conn.blockSize = DefaultBlockSize
	}
	return conn, nil
}

func toFileStatus(p string, fi os.FileInfo) backend.FileStatus {
	return backend.FileStatus{
		Path:    p,
		Name:    fi.Name(),
		IsDir:   fi.IsDir(),
		Size:    fi.Size(),
		Mode:    fi.Mode(),
		ModTime: fi.ModTime(),
	}
}

func (h *HDFSConn) Stat(ctx context.Context, p string) (backend.FileStatus, error) {
	fi, err := h.c.Stat(p)
	if err != nil {
		return backend.FileStatus{}, err
	}
	return toFileStatus(p, fi), nil
}

func (h *HDFSConn) Exists(ctx context.Context, p string) (bool, error) {
	_, err := h.c.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (h *HDFSConn) Mkdirs(ctx context.Context, p string) error {
	return h.c.MkdirAll(p, 0o755)
}

func (h *HDFSConn) Delete(ctx context.Context, p string, recursive bool) error {
	if recursive {
		return h.c.RemoveAll(p)
	}
	return h.c.Remove(p)
}

func (h *HDFSConn) Rename(ctx context.Context, oldPath, newPath string) error {
	return h.c.Rename(oldPath, newPath)
}

func (h *HDFSConn) ListStatus(ctx context.Context, dir string) (backend.DirLister, error) {
	f, err := h.c.Open(dir)
	if err != nil {
		return nil, err
	}
	return &hdfsLister{dir: dir, f: f}, nil
}

func (h *HDFSConn) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	return h.c.Open(p)
}

// Create replaces any file at p, as hdfs create(overwrite=true) does.
func (h *HDFSConn) Create(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := h.c.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return h.c.CreateFile(p, h.replication, h.blockSize, 0o644)
}

func (h *HDFSConn) Close() error {
	return h.c.Close()
}

type hdfsLister struct {
	dir string
	f   *hdfs.FileReader
}

func (l *hdfsLister) Next(ctx context.Context) ([]backend.FileStatus, error) {
	infos, err := l.f.Readdir(listPage)
	if len(infos) == 0 && err == nil {
		err = io.EOF
	}
	out := make([]backend.FileStatus, 0, len(infos))
	for _, fi := range infos {
		out = append(out, toFileStatus(path.Join(l.dir, fi.Name()), fi))
	}
	if len(out) > 0 && errors.Is(err, io.EOF) {
		return out, nil
	}
	return out, err
}

func (l *hdfsLister) Close() error {
	return l.f.Close()
}
