package hdao

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/challenai/hdao/client"
	"github.com/challenai/hdao/logger"
)

// Config is the on-disk configuration of both stores.
type Config struct {
	HBase HBaseConfig `yaml:"hbase"`
	HDFS  HDFSConfig  `yaml:"hdfs"`
	Log   LogConfig   `yaml:"log"`
}

// HBaseConfig locates the HBase Thrift2 HTTP gateways.
type HBaseConfig struct {
	// Addresses are tried in order until one answers.
	Addresses []string        `yaml:"addresses"`
	Headers   []client.Header `yaml:"headers"`
	// Timeout bounds every HTTP round trip.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
	// ScanBatchSize is the number of rows fetched per scanner round trip.
	// Default: 64
	ScanBatchSize int32 `yaml:"scanBatchSize"`
	// BatchPolicy is "best-effort" (default) or "fail-fast".
	BatchPolicy string `yaml:"batchPolicy"`
}

// HDFSConfig locates the namenode.
type HDFSConfig struct {
	// Namenode is "host:port". Several HA namenodes may be comma separated.
	Namenode string `yaml:"namenode"`
	User     string `yaml:"user"`
	// Replication is the replication factor hint for new files.
	// Default: 3
	Replication int `yaml:"replication"`
	// Default: 128 MiB
	BlockSize int64 `yaml:"blockSize"`
	// BufferSize is the stream copy buffer.
	// Default: 64 KiB
	BufferSize int `yaml:"bufferSize"`
}

type LogConfig struct {
	// Level is one of info, warn, error, fatal, off.
	Level string `yaml:"level"`
	// File appends to a file instead of stdout.
	File string `yaml:"file"`
	// Sink is "std" (default) or "glog".
	Sink string `yaml:"sink"`
}

// DefaultConfig targets a single local pseudo-distributed cluster.
func DefaultConfig() Config {
	return Config{
		HBase: HBaseConfig{
			Addresses:     []string{"http://localhost:9090/"},
			Timeout:       client.DefaultTimeout,
			ScanBatchSize: client.DefaultScanBatch,
			BatchPolicy:   BatchBestEffort.String(),
		},
		HDFS: HDFSConfig{
			Namenode:    "localhost:9000",
			Replication: client.DefaultReplication,
			BlockSize:   client.DefaultBlockSize,
			BufferSize:  DefaultBufferSize,
		},
		Log: LogConfig{
			Level: "info",
			Sink:  "std",
		},
	}
}

// LoadConfig reads a YAML file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("hdao: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("hdao: parse config %s: %w", path, err)
	}
	if _, err := ParseBatchPolicy(cfg.HBase.BatchPolicy); err != nil {
		return cfg, err
	}
	cfg.validate()
	return cfg, nil
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.HBase.Timeout <= 0 {
		c.HBase.Timeout = client.DefaultTimeout
	}
	if c.HBase.ScanBatchSize < 1 {
		c.HBase.ScanBatchSize = client.DefaultScanBatch
	}
	if c.HDFS.Replication < 1 {
		c.HDFS.Replication = client.DefaultReplication
	}
	if c.HDFS.BlockSize <= 0 {
		c.HDFS.BlockSize = client.DefaultBlockSize
	}
	if c.HDFS.BufferSize <= 0 {
		c.HDFS.BufferSize = DefaultBufferSize
	}
	if c.Log.Sink == "" {
		c.Log.Sink = "std"
	}
}

// Namenodes splits the comma separated namenode list.
func (c HDFSConfig) Namenodes() []string {
	var out []string
	for _, n := range strings.Split(c.Namenode, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// NewLogger builds the logger described by the config.
func (c LogConfig) NewLogger() (logger.Logger, error) {
	lvl := logger.ParseLevel(c.Level)
	if strings.EqualFold(c.Sink, "glog") {
		return logger.NewGlogLogger(lvl), nil
	}
	if c.File != "" {
		l, err := logger.NewFileLogger(c.File)
		if err != nil {
			return nil, err
		}
		l.SetLevel(lvl)
		return l, nil
	}
	l := logger.NewStdLogger()
	l.SetLevel(lvl)
	return l, nil
}
