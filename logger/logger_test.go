package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel(""))
	require.Equal(t, LevelInfo, ParseLevel("debug"))
	require.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelFatal, ParseLevel("fatal"))
	require.Equal(t, LevelOff, ParseLevel("none"))
}

func TestWriterLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)
	l.Infof("open %s", "orders")
	l.SetLevel(LevelError)
	l.Warnf("dropped")
	l.Errorf("failed %d", 2)
	l.Fatalf("bad")
	require.Equal(t, "[INFO] open orders\n[ERROR] failed 2\n[FATAL] bad\n", buf.String())

	buf.Reset()
	l.SetLevel(LevelOff)
	l.Fatalf("quiet")
	require.Empty(t, buf.String())
}

func TestFileLogger(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hdao.log")
	l, err := NewFileLogger(p)
	require.NoError(t, err)
	l.Warnf("disk %d%%", 90)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "[WARN] disk 90%\n", string(b))

	_, err = NewFileLogger(filepath.Join(t.TempDir(), "missing", "hdao.log"))
	require.Error(t, err)
}
