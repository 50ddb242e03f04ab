package hdao

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hdao.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
hbase:
  addresses: ["http://hmaster-1:9090/", "http://hmaster-2:9090/"]
  headers:
    - key: Authorization
      value: Basic abc
  timeout: 3s
  scanBatchSize: 128
  batchPolicy: fail-fast
hdfs:
  namenode: "nn1:8020, nn2:8020"
  user: hadoop
  replication: 2
log:
  level: warn
`), 0o644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, []string{"http://hmaster-1:9090/", "http://hmaster-2:9090/"}, cfg.HBase.Addresses)
	require.Len(t, cfg.HBase.Headers, 1)
	require.Equal(t, "Authorization", cfg.HBase.Headers[0].Key)
	require.Equal(t, 3*time.Second, cfg.HBase.Timeout)
	require.Equal(t, int32(128), cfg.HBase.ScanBatchSize)
	require.Equal(t, "fail-fast", cfg.HBase.BatchPolicy)

	require.Equal(t, []string{"nn1:8020", "nn2:8020"}, cfg.HDFS.Namenodes())
	require.Equal(t, "hadoop", cfg.HDFS.User)
	require.Equal(t, 2, cfg.HDFS.Replication)
	// unset keys keep their defaults
	require.Equal(t, int64(128<<20), cfg.HDFS.BlockSize)
	require.Equal(t, DefaultBufferSize, cfg.HDFS.BufferSize)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "std", cfg.Log.Sink)
}

func TestLoadConfig_ClampsInvalidValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hdao.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
hbase:
  timeout: -1s
  scanBatchSize: 0
hdfs:
  replication: -3
  bufferSize: 0
`), 0o644))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	def := DefaultConfig()
	require.Equal(t, def.HBase.Timeout, cfg.HBase.Timeout)
	require.Equal(t, def.HBase.ScanBatchSize, cfg.HBase.ScanBatchSize)
	require.Equal(t, def.HDFS.Replication, cfg.HDFS.Replication)
	require.Equal(t, def.HDFS.BufferSize, cfg.HDFS.BufferSize)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("hbase: [unterminated"), 0o644))
	_, err = LoadConfig(bad)
	require.Error(t, err)

	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("hbase:\n  batchPolicy: sometimes\n"), 0o644))
	_, err = LoadConfig(policy)
	require.ErrorContains(t, err, "unknown batch policy")
}

func TestParseBatchPolicy(t *testing.T) {
	p, err := ParseBatchPolicy("")
	require.NoError(t, err)
	require.Equal(t, BatchBestEffort, p)

	p, err = ParseBatchPolicy("Fail-Fast")
	require.NoError(t, err)
	require.Equal(t, BatchFailFast, p)
	require.Equal(t, "fail-fast", p.String())
}

func TestLogConfig_NewLogger(t *testing.T) {
	l, err := LogConfig{Level: "error", File: filepath.Join(t.TempDir(), "hdao.log")}.NewLogger()
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = LogConfig{File: filepath.Join(t.TempDir(), "missing", "hdao.log")}.NewLogger()
	require.Error(t, err)
}
