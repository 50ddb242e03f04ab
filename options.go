package hdao

import (
	"fmt"
	"strings"

	"github.com/challenai/hdao/client"
	"github.com/challenai/hdao/codec"
	"github.com/challenai/hdao/logger"
)

// BatchPolicy decides what DeleteRows does when some rows cannot be deleted.
type BatchPolicy int

const (
	// BatchBestEffort sends one batch request and reports the rows the
	// backend could not delete. Rows that succeeded stay deleted.
	BatchBestEffort BatchPolicy = iota
	// BatchFailFast deletes row by row and stops at the first failure.
	BatchFailFast
)

func (p BatchPolicy) String() string {
	if p == BatchFailFast {
		return "fail-fast"
	}
	return "best-effort"
}

// ParseBatchPolicy accepts "best-effort" (or empty) and "fail-fast".
func ParseBatchPolicy(s string) (BatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best-effort", "besteffort":
		return BatchBestEffort, nil
	case "fail-fast", "failfast":
		return BatchFailFast, nil
	}
	return BatchBestEffort, fmt.Errorf("hdao: unknown batch policy %q", s)
}

// DefaultBufferSize is the stream copy buffer used by Upload and Download.
const DefaultBufferSize = 64 << 10

type options struct {
	log         logger.Logger
	codec       codec.Codec
	batchPolicy BatchPolicy
	scanBatch   int32
	bufferSize  int
}

func defaultOptions() options {
	return options{
		log:         logger.NewNopLogger(),
		codec:       &codec.DefaultCodec{},
		batchPolicy: BatchBestEffort,
		scanBatch:   client.DefaultScanBatch,
		bufferSize:  DefaultBufferSize,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a ColumnStore or a FileStore.
type Option func(*options)

// WithLogger sets the diagnostic logger. Nothing is logged by default.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCodec sets the codec used by Save and Load.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

func WithBatchPolicy(p BatchPolicy) Option {
	return func(o *options) { o.batchPolicy = p }
}

// WithScanBatch sets the default number of rows fetched per scanner round
// trip. Non-positive values are ignored.
func WithScanBatch(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.scanBatch = n
		}
	}
}

// WithBufferSize sets the stream copy buffer. Non-positive values are ignored.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}
