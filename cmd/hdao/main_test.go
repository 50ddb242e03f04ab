package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/challenai/hdao"
	"github.com/challenai/hdao/logger"
	"github.com/challenai/hdao/memstore"
)

func newTestDeps(t *testing.T) (*Deps, *memstore.FileSystem) {
	t.Helper()
	ctx := context.Background()
	cs, err := hdao.NewColumnStore(ctx, memstore.NewColumnStore())
	require.NoError(t, err)
	mem := memstore.NewFileSystem()
	fs, err := hdao.NewFileStore(mem)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cs.Close()
		_ = fs.Close()
	})
	return &Deps{Columns: cs, Files: fs, Log: logger.NewNopLogger()}, mem
}

func run(t *testing.T, deps *Deps, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	_, err := Run(context.Background(), args, &stdout, &stderr, deps)
	return stdout.String(), err
}

func mustRun(t *testing.T, deps *Deps, args ...string) string {
	t.Helper()
	out, err := run(t, deps, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestTableCommands(t *testing.T) {
	deps, _ := newTestDeps(t)

	require.Equal(t, "created orders\n", mustRun(t, deps, "table", "create", "orders", "o"))
	require.Equal(t, "true\n", mustRun(t, deps, "table", "exists", "orders"))
	mustRun(t, deps, "table", "add-family", "orders", "audit")
	require.Equal(t, "orders\to,audit\n", mustRun(t, deps, "table", "describe", "orders"))
	require.Equal(t, "orders\n", mustRun(t, deps, "table", "ls"))

	mustRun(t, deps, "table", "drop-family", "orders", "audit")
	require.Equal(t, "orders\to\n", mustRun(t, deps, "table", "describe", "orders"))
	mustRun(t, deps, "table", "enable", "orders")

	_, err := run(t, deps, "table", "create", "orders", "o")
	require.ErrorIs(t, err, hdao.ErrTableExists)

	mustRun(t, deps, "table", "drop", "orders")
	require.Equal(t, "false\n", mustRun(t, deps, "table", "exists", "orders"))

	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), []string{"table", "describe", "orders"}, &stdout, &stderr, deps)
	require.ErrorIs(t, err, hdao.ErrTableNotFound)
	require.Equal(t, 1, code)
}

func TestRowCommands(t *testing.T) {
	deps, _ := newTestDeps(t)
	mustRun(t, deps, "table", "create", "orders", "o")

	mustRun(t, deps, "row", "put", "orders", "order-1", "o:status", "NEW")
	require.Equal(t, "order-1\to:status\t2\tNEW+PAID\n", mustRun(t, deps, "row", "append", "orders", "order-1", "o:status", "+PAID"))
	require.Equal(t, "order-1\to:status\t2\tNEW+PAID\n", mustRun(t, deps, "row", "get", "orders", "order-1"))

	mustRun(t, deps, "row", "put", "-t", "int", "orders", "order-2", "o:total", "42")
	require.Equal(t, "order-2\to:total\t3\t42\n", mustRun(t, deps, "row", "get", "--type", "int", "orders", "order-2"))

	require.Empty(t, mustRun(t, deps, "row", "get", "orders", "missing"))

	_, err := run(t, deps, "row", "put", "orders", "order-3", "status", "NEW")
	require.ErrorContains(t, err, "FAMILY:QUALIFIER")
	_, err = run(t, deps, "row", "put", "-t", "int", "orders", "order-3", "o:total", "many")
	require.Error(t, err)
}

func TestRowScanAndDelete(t *testing.T) {
	deps, _ := newTestDeps(t)
	mustRun(t, deps, "table", "create", "events", "e")
	for _, k := range []string{"a1", "b1", "a2"} {
		mustRun(t, deps, "row", "put", "events", k, "e:v", k)
	}

	out := mustRun(t, deps, "row", "scan", "events", "--prefix", "a")
	require.Equal(t, "a1\te:v\t1\ta1\na2\te:v\t3\ta2\n", out)

	out = mustRun(t, deps, "row", "scan", "events", "-n", "1", "--batch", "1")
	require.Equal(t, "a1\te:v\t1\ta1\n", out)

	out = mustRun(t, deps, "row", "scan", "events", "--start", "a2", "--stop", "b1")
	require.Equal(t, "a2\te:v\t3\ta2\n", out)

	mustRun(t, deps, "row", "delete", "events", "a1", "a2")
	mustRun(t, deps, "row", "delete", "events", "missing")
	require.Equal(t, "b1\te:v\t2\tb1\n", mustRun(t, deps, "row", "scan", "events"))

	_, err := run(t, deps, "row", "scan", "nope")
	require.ErrorIs(t, err, hdao.ErrTableNotFound)
}

func TestFSCommands(t *testing.T) {
	deps, mem := newTestDeps(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(local, []byte("id,status\n1,NEW\n"), 0o644))

	mustRun(t, deps, "fs", "mkdir", "/data/in")
	mustRun(t, deps, "fs", "put", local, "/data")
	b, err := mem.ReadFile("/data/orders.csv")
	require.NoError(t, err)
	require.Equal(t, "id,status\n1,NEW\n", string(b))

	out := mustRun(t, deps, "fs", "ls", "/data")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "d\t0\t"), lines[0])
	require.True(t, strings.HasSuffix(lines[0], "\t/data/in"), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "-\t16\t"), lines[1])

	mustRun(t, deps, "fs", "mv", "/data/orders.csv", "/data/in/orders.csv")
	require.Equal(t, "/data/in/orders.csv\n", mustRun(t, deps, "fs", "lsr", "/data"))
	require.Equal(t, "-in\n orders.csv\n", mustRun(t, deps, "fs", "tree", "/data"))

	mustRun(t, deps, "fs", "get", "/data/in/orders.csv", filepath.Join(dir, "copy.csv"))
	b, err = os.ReadFile(filepath.Join(dir, "copy.csv"))
	require.NoError(t, err)
	require.Equal(t, "id,status\n1,NEW\n", string(b))

	_, err = run(t, deps, "fs", "rm", "/data")
	require.Error(t, err)
	mustRun(t, deps, "fs", "rm", "-r", "/data")

	_, err = run(t, deps, "fs", "get", "/data/in/orders.csv", dir)
	require.ErrorIs(t, err, hdao.ErrRemotePathNotFound)
	_, err = run(t, deps, "fs", "put", filepath.Join(dir, "missing.csv"), "/x")
	require.ErrorIs(t, err, hdao.ErrLocalFileNotFound)
}

func TestRun_OpensMemBackend(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), []string{"--backend", "mem", "--log_level", "off", "table", "create", "t", "f"}, &stdout, &stderr, nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "created t\n", stdout.String())
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), []string{"--backend", "nope", "--log-level", "off", "table", "ls"}, &stdout, &stderr, nil)
	require.ErrorContains(t, err, "unknown backend")
	require.Equal(t, 1, code)

	code, err = Run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "table", "ls"}, &stdout, &stderr, nil)
	require.Error(t, err)
	require.Equal(t, 1, code)

	deps, _ := newTestDeps(t)
	mustRun(t, deps, "table", "create", "events", "e")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, err = Run(ctx, []string{"row", "scan", "events"}, &stdout, &stderr, deps)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 130, code)
}

func TestParseColumn(t *testing.T) {
	f, q, err := parseColumn("o:status")
	require.NoError(t, err)
	require.Equal(t, "o", f.String())
	require.Equal(t, "status", q.String())

	f, q, err = parseColumn("o:")
	require.NoError(t, err)
	require.Equal(t, "o", f.String())
	require.Empty(t, q)

	_, _, err = parseColumn(":q")
	require.Error(t, err)
}
