package hdao

import (
	"context"
	"errors"

	"github.com/challenai/hdao/client"
)

// NewHBase dials the first answering Thrift gateway of cfg and returns a
// ColumnStore on it. Options derived from cfg come first, so opts override
// them.
func NewHBase(ctx context.Context, cfg HBaseConfig, opts ...Option) (*ColumnStore, error) {
	policy, err := ParseBatchPolicy(cfg.BatchPolicy)
	if err != nil {
		return nil, err
	}
	conn, err := client.DialHBase(ctx, client.HBaseOptions{
		Addresses: cfg.Addresses,
		Headers:   cfg.Headers,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	base := []Option{WithBatchPolicy(policy), WithScanBatch(cfg.ScanBatchSize)}
	cs, err := NewColumnStore(ctx, conn, append(base, opts...)...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return cs, nil
}

// NewHDFS connects to the namenode of cfg and returns a FileStore on it.
func NewHDFS(ctx context.Context, cfg HDFSConfig, opts ...Option) (*FileStore, error) {
	conn, err := client.DialHDFS(ctx, client.HDFSOptions{
		Namenodes:   cfg.Namenodes(),
		User:        cfg.User,
		Replication: cfg.Replication,
		BlockSize:   cfg.BlockSize,
	})
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	base := []Option{WithBufferSize(cfg.BufferSize)}
	return NewFileStore(conn, append(base, opts...)...)
}
