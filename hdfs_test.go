package hdao

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/challenai/hdao/memstore"
)

func newTestFileStore(t *testing.T, opts ...Option) (*FileStore, *memstore.FileSystem) {
	t.Helper()
	mem := memstore.NewFileSystem()
	fs, err := NewFileStore(mem, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return fs, mem
}

func writeLocal(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestFileStore_UploadDownloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	big := make([]byte, 3*DefaultBufferSize+17)
	_, err := rand.Read(big)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"one_byte", []byte{0x42}},
		{"larger_than_buffer", big},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, mem := newTestFileStore(t)
			require.NoError(t, fs.MakeDir(ctx, "/data"))

			local := writeLocal(t, "in.bin", tt.data)
			require.NoError(t, fs.Upload(ctx, local, "/data/out.bin"))

			local2 := filepath.Join(t.TempDir(), "back.bin")
			require.NoError(t, fs.Download(ctx, "/data/out.bin", local2))

			got, err := os.ReadFile(local2)
			require.NoError(t, err)
			require.True(t, bytes.Equal(tt.data, got))
			require.Zero(t, mem.OpenStreams())
		})
	}
}

func TestFileStore_UploadSmallBuffer(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t, WithBufferSize(7))
	data := bytes.Repeat([]byte("hdfs"), 100)

	require.NoError(t, fs.Upload(ctx, writeLocal(t, "a", data), "/a"))
	got, err := mem.ReadFile("/a")
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFileStore_UploadOverwritesAndLeavesNoTemp(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/data/f.txt", []byte("old content")))

	require.NoError(t, fs.Upload(ctx, writeLocal(t, "f.txt", []byte("new")), "/data/f.txt"))

	got, err := mem.ReadFile("/data/f.txt")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)

	var names []string
	for e, err := range fs.List(ctx, "/data") {
		require.NoError(t, err)
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"f.txt"}, names)
}

func TestFileStore_UploadIntoDirectory(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, fs.MakeDir(ctx, "/data"))

	require.NoError(t, fs.Upload(ctx, writeLocal(t, "report.csv", []byte("a,b")), "/data"))

	got, err := mem.ReadFile("/data/report.csv")
	require.NoError(t, err)
	require.Equal(t, []byte("a,b"), got)
}

func TestFileStore_UploadCreatesParents(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)

	require.NoError(t, fs.Upload(ctx, writeLocal(t, "f", []byte("deep")), "/new/deep/file"))
	got, err := mem.ReadFile("/new/deep/file")
	require.NoError(t, err)
	require.Equal(t, []byte("deep"), got)

	mem.FailNext("mkdirs", errors.New("quota exceeded"))
	err = fs.Upload(ctx, writeLocal(t, "g", []byte("x")), "/other/g")
	require.ErrorContains(t, err, "quota exceeded")
	ok, err := fs.Exists(ctx, "/other/g")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_UploadMissingLocal(t *testing.T) {
	fs, _ := newTestFileStore(t)
	err := fs.Upload(context.Background(), filepath.Join(t.TempDir(), "nope"), "/x")
	require.ErrorIs(t, err, ErrLocalFileNotFound)
}

func TestFileStore_UploadTransferFailure(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, fs.MakeDir(ctx, "/data"))
	mem.FailNext("write", errors.New("datanode went away"))

	err := fs.Upload(ctx, writeLocal(t, "f", []byte("payload")), "/data/f")
	require.ErrorIs(t, err, ErrTransfer)

	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "/data/f", terr.Dst)
	require.Zero(t, mem.OpenStreams())

	// neither the target nor the temporary file is left behind
	for e, err := range fs.List(ctx, "/data") {
		require.NoError(t, err)
		t.Fatalf("unexpected entry %s", e.Path)
	}
}

func TestFileStore_DownloadMissingRemote(t *testing.T) {
	fs, _ := newTestFileStore(t)
	err := fs.Download(context.Background(), "/missing", filepath.Join(t.TempDir(), "x"))
	require.ErrorIs(t, err, ErrRemotePathNotFound)
}

func TestFileStore_DownloadTruncatesLocal(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/f", []byte("short")))
	local := writeLocal(t, "f", []byte("a much longer existing local file"))

	require.NoError(t, fs.Download(ctx, "/f", local))
	got, err := os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, []byte("short"), got)
}

func TestFileStore_DownloadIntoDirectory(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/logs/app.log", []byte("line")))
	dir := t.TempDir()

	require.NoError(t, fs.Download(ctx, "/logs/app.log", dir))
	got, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	require.Equal(t, []byte("line"), got)
}

func TestFileStore_DownloadCreatesLocalParents(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/f", []byte("payload")))
	local := filepath.Join(t.TempDir(), "a", "b", "file")

	require.NoError(t, fs.Download(ctx, "/f", local))
	got, err := os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestFileStore_DownloadTransferFailure(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/f", []byte("payload")))
	mem.FailNext("read", errors.New("checksum error"))

	err := fs.Download(ctx, "/f", filepath.Join(t.TempDir(), "f"))
	var terr *TransferError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, "/f", terr.Src)
	require.Zero(t, mem.OpenStreams())
}

func TestFileStore_MakeDirIdempotent(t *testing.T) {
	ctx := context.Background()
	fs, _ := newTestFileStore(t)

	require.NoError(t, fs.MakeDir(ctx, "/a/b/c"))
	require.NoError(t, fs.MakeDir(ctx, "/a/b/c"))

	for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
		ok, err := fs.Exists(ctx, p)
		require.NoError(t, err)
		require.True(t, ok, p)
	}
}

func TestFileStore_DeleteRecursive(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/d/x/1.txt", []byte("1")))
	require.NoError(t, mem.WriteFile("/d/x/y/2.txt", []byte("2")))
	require.NoError(t, mem.WriteFile("/d/3.txt", []byte("3")))

	require.NoError(t, fs.Delete(ctx, "/d", true))

	ok, err := fs.Exists(ctx, "/d")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = fs.Exists(ctx, "/d/x/y/2.txt")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_DeleteMissing(t *testing.T) {
	fs, _ := newTestFileStore(t)
	err := fs.Delete(context.Background(), "/missing", true)
	require.ErrorIs(t, err, ErrRemotePathNotFound)
}

func TestFileStore_Rename(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/a/f", []byte("x")))
	require.NoError(t, fs.MakeDir(ctx, "/b"))

	require.NoError(t, fs.Rename(ctx, "/a/f", "/b/g"))
	got, err := mem.ReadFile("/b/g")
	require.NoError(t, err)
	require.Equal(t, []byte("x"), got)

	ok, err := fs.Exists(ctx, "/a/f")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_RenameMissingSource(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/keep", []byte("k")))

	err := fs.Rename(ctx, "/missing", "/other")
	require.ErrorIs(t, err, ErrRemotePathNotFound)

	var paths []string
	for e, err := range fs.ListTree(ctx, "/") {
		require.NoError(t, err)
		paths = append(paths, e.Path)
	}
	require.Equal(t, []string{"/keep"}, paths)
}

func TestFileStore_RenameMissingParent(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	require.NoError(t, mem.WriteFile("/f", []byte("x")))

	err := fs.Rename(ctx, "/f", "/no/such/dir/f")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRemotePathNotFound)

	ok, err := fs.Exists(ctx, "/f")
	require.NoError(t, err)
	require.True(t, ok)
}

func seedTree(t *testing.T, mem *memstore.FileSystem) {
	t.Helper()
	for _, p := range []string{"/r/a.txt", "/r/d1/b.txt", "/r/d1/d2/c.txt", "/r/z.txt"} {
		require.NoError(t, mem.WriteFile(p, []byte(p)))
	}
	require.NoError(t, mem.Mkdirs(context.Background(), "/r/empty"))
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	mem.PageSize = 2
	seedTree(t, mem)

	var got []string
	for e, err := range fs.List(ctx, "/r") {
		require.NoError(t, err)
		got = append(got, e.Name+":"+e.Kind.String())
	}
	require.Equal(t, []string{"a.txt:file", "d1:directory", "empty:directory", "z.txt:file"}, got)
	require.Zero(t, mem.OpenStreams())
}

func TestFileStore_ListFiles(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	seedTree(t, mem)

	var got []string
	for e, err := range fs.ListFiles(ctx, "/r") {
		require.NoError(t, err)
		got = append(got, e.Path)
	}
	require.Equal(t, []string{"/r/a.txt", "/r/d1/b.txt", "/r/d1/d2/c.txt", "/r/z.txt"}, got)
}

func TestFileStore_ListTree(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	seedTree(t, mem)

	var lines []string
	for e, err := range fs.ListTree(ctx, "/r") {
		require.NoError(t, err)
		lines = append(lines, e.Display())
	}
	require.Equal(t, strings.Join([]string{
		"a.txt",
		"-d1",
		" b.txt",
		"--d2",
		"  c.txt",
		"-empty",
		"z.txt",
	}, "\n"), strings.Join(lines, "\n"))
}

func TestFileStore_ListEarlyBreakClosesListers(t *testing.T) {
	ctx := context.Background()
	fs, mem := newTestFileStore(t)
	mem.PageSize = 1
	seedTree(t, mem)

	for e, err := range fs.ListTree(ctx, "/r") {
		require.NoError(t, err)
		if e.Name == "c.txt" {
			break
		}
	}
	require.Zero(t, mem.OpenStreams())
}

func TestFileStore_ListStopsOnCancel(t *testing.T) {
	fs, mem := newTestFileStore(t)
	mem.PageSize = 1
	seedTree(t, mem)

	ctx, cancel := context.WithCancel(context.Background())
	var names []string
	var got error
	for e, err := range fs.List(ctx, "/r") {
		if err != nil {
			got = err
			break
		}
		names = append(names, e.Name)
		cancel()
	}
	require.Equal(t, []string{"a.txt"}, names)
	require.ErrorIs(t, got, context.Canceled)
	require.Zero(t, mem.OpenStreams())
}

func TestFileStore_ListMissing(t *testing.T) {
	fs, _ := newTestFileStore(t)
	for _, err := range fs.List(context.Background(), "/missing") {
		require.ErrorIs(t, err, ErrRemotePathNotFound)
	}
}

func TestFileStore_Close(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(memstore.NewFileSystem())
	require.NoError(t, err)

	require.NoError(t, fs.Close())
	require.NoError(t, fs.Close())

	_, err = fs.Exists(ctx, "/")
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, fs.MakeDir(ctx, "/a"), ErrClosed)
	require.ErrorIs(t, fs.Upload(ctx, writeLocal(t, "f", nil), "/f"), ErrClosed)
}
