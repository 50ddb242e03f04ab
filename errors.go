package hdao

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("hdao: client is closed")

	// ErrConnection is returned when the backend cannot be reached at construction.
	ErrConnection = errors.New("hdao: backend unreachable")

	// ErrTableNotFound is returned when the guarded table does not exist.
	ErrTableNotFound = errors.New("hdao: table not found")

	// ErrTableExists is returned when creating a table that already exists.
	ErrTableExists = errors.New("hdao: table already exists")

	// ErrNoColumnFamilies is returned when creating a table without families.
	ErrNoColumnFamilies = errors.New("hdao: at least one column family is required")

	// ErrTableBusy is returned for data operations on a table whose schema is
	// being changed by the same client.
	ErrTableBusy = errors.New("hdao: table schema mutation in progress")

	// ErrRemotePathNotFound is returned when the guarded remote path does not exist.
	ErrRemotePathNotFound = errors.New("hdao: remote path not found")

	// ErrLocalFileNotFound is returned when an upload source does not exist.
	ErrLocalFileNotFound = errors.New("hdao: local file not found")

	// ErrSchemaMutation matches every *SchemaMutationError.
	ErrSchemaMutation = errors.New("hdao: schema mutation failed")

	// ErrPartialBatch matches every *PartialBatchError.
	ErrPartialBatch = errors.New("hdao: batch partially failed")

	// ErrTransfer matches every *TransferError.
	ErrTransfer = errors.New("hdao: stream transfer failed")
)

// OpError records a failed operation and the table or path it addressed.
type OpError struct {
	Op     string
	Entity string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("hdao: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Schema mutation steps reported by SchemaMutationError.
const (
	StepDescribe = "describe"
	StepDisable  = "disable"
	StepModify   = "modify"
	StepEnable   = "enable"
	StepDelete   = "delete"
)

// SchemaMutationError reports the step of a disable/modify/enable or
// disable/delete sequence that failed. Disabled tells whether the table was
// left disabled; ColumnStore.EnableTable or a retry of the same mutation
// brings it back online.
type SchemaMutationError struct {
	Table    string
	Step     string
	Disabled bool
	Err      error
}

func (e *SchemaMutationError) Error() string {
	state := "enabled"
	if e.Disabled {
		state = "left disabled"
	}
	return fmt.Sprintf("hdao: schema mutation of %s failed at %s (table %s): %v", e.Table, e.Step, state, e.Err)
}

func (e *SchemaMutationError) Unwrap() error { return e.Err }

func (e *SchemaMutationError) Is(target error) bool { return target == ErrSchemaMutation }

// PartialBatchError lists the rows a batch could not delete. Skipped rows
// were never attempted (BatchFailFast only).
type PartialBatchError struct {
	Table   string
	Failed  []Bytes
	Skipped []Bytes
	Err     error
}

func (e *PartialBatchError) Error() string {
	msg := fmt.Sprintf("hdao: batch on %s: %d failed [%s]", e.Table, len(e.Failed), joinKeys(e.Failed))
	if len(e.Skipped) > 0 {
		msg += fmt.Sprintf(", %d skipped", len(e.Skipped))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PartialBatchError) Unwrap() error { return e.Err }

func (e *PartialBatchError) Is(target error) bool { return target == ErrPartialBatch }

func joinKeys(keys []Bytes) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}

// TransferError reports a stream copy that stopped partway. The destination
// may hold a partial file and must be treated as invalid.
type TransferError struct {
	Src     string
	Dst     string
	Written int64
	Err     error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("hdao: copy %s to %s failed after %d bytes: %v", e.Src, e.Dst, e.Written, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

func opErr(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Entity: entity, Err: err}
}
