package hdao

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"sync"

	"github.com/challenai/hdao/backend"
	"github.com/challenai/hdao/utils"
)

// ColumnStore runs schema and row operations against a column-family store.
// Every operation checks that its table exists, acquires a table handle for
// its own use and releases it on return. A ColumnStore is safe for concurrent
// use; schema changes are serialized per table.
type ColumnStore struct {
	conn  backend.Connection
	admin backend.Admin
	opts  options

	mu       sync.Mutex
	closed   bool
	locks    map[string]*sync.Mutex
	mutating map[string]bool
}

// NewColumnStore derives the admin handle from conn. The ColumnStore owns conn
// and closes it in Close.
func NewColumnStore(ctx context.Context, conn backend.Connection, opts ...Option) (*ColumnStore, error) {
	if conn == nil {
		return nil, ErrConnection
	}
	admin, err := conn.Admin(ctx)
	if err != nil {
		return nil, errors.Join(ErrConnection, err)
	}
	return &ColumnStore{
		conn:     conn,
		admin:    admin,
		opts:     applyOptions(opts),
		locks:    map[string]*sync.Mutex{},
		mutating: map[string]bool{},
	}, nil
}

// Close releases the admin handle, then the connection. Calling Close more
// than once is a no-op.
func (c *ColumnStore) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	admin, conn := c.admin, c.conn
	c.admin, c.conn = nil, nil
	c.mu.Unlock()

	var errs []error
	if admin != nil {
		errs = append(errs, admin.Close())
	}
	if conn != nil {
		errs = append(errs, conn.Close())
	}
	return errors.Join(errs...)
}

// handles returns the live admin and connection, or ErrClosed.
func (c *ColumnStore) handles() (backend.Admin, backend.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, ErrClosed
	}
	return c.admin, c.conn, nil
}

// beginMutation takes the schema lock of table and marks it busy for data
// operations until the returned func is called.
func (c *ColumnStore) beginMutation(table string) func() {
	c.mu.Lock()
	l, ok := c.locks[table]
	if !ok {
		l = &sync.Mutex{}
		c.locks[table] = l
	}
	c.mu.Unlock()

	l.Lock()
	c.mu.Lock()
	c.mutating[table] = true
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.mutating, table)
		c.mu.Unlock()
		l.Unlock()
	}
}

func (c *ColumnStore) busy(table string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mutating[table]
}

// guard fails with ErrTableNotFound unless table exists.
func (c *ColumnStore) guard(ctx context.Context, admin backend.Admin, op, table string) error {
	ok, err := admin.TableExists(ctx, table)
	if err != nil {
		return opErr(op, table, err)
	}
	if !ok {
		return opErr(op, table, ErrTableNotFound)
	}
	return nil
}

// acquire runs the guard and opens a table handle for one data operation.
// The caller must Close the handle.
func (c *ColumnStore) acquire(ctx context.Context, op, table string) (backend.Table, error) {
	admin, conn, err := c.handles()
	if err != nil {
		return nil, err
	}
	if c.busy(table) {
		return nil, opErr(op, table, ErrTableBusy)
	}
	if err := c.guard(ctx, admin, op, table); err != nil {
		return nil, err
	}
	t, err := conn.Table(ctx, table)
	if err != nil {
		return nil, opErr(op, table, err)
	}
	return t, nil
}

func (c *ColumnStore) withTable(ctx context.Context, op, table string, fn func(t backend.Table) error) error {
	t, err := c.acquire(ctx, op, table)
	if err != nil {
		return err
	}
	defer t.Close()
	return fn(t)
}

// TableExists reports whether table exists.
func (c *ColumnStore) TableExists(ctx context.Context, table string) (bool, error) {
	admin, _, err := c.handles()
	if err != nil {
		return false, err
	}
	ok, err := admin.TableExists(ctx, table)
	if err != nil {
		return false, opErr("exists", table, err)
	}
	return ok, nil
}

// ListTables returns the names of all tables.
func (c *ColumnStore) ListTables(ctx context.Context) ([]string, error) {
	admin, _, err := c.handles()
	if err != nil {
		return nil, err
	}
	names, err := admin.ListTables(ctx)
	if err != nil {
		return nil, opErr("list", "*", err)
	}
	return names, nil
}

// CreateTable creates an enabled table with the given families. Duplicate
// families are dropped, keeping the first occurrence.
func (c *ColumnStore) CreateTable(ctx context.Context, table string, families ...string) error {
	admin, _, err := c.handles()
	if err != nil {
		return err
	}
	desc := backend.NewTableDescriptor(table, families...)
	if len(desc.Families) == 0 {
		return opErr("create", table, ErrNoColumnFamilies)
	}
	defer c.beginMutation(table)()

	ok, err := admin.TableExists(ctx, table)
	if err != nil {
		return opErr("create", table, err)
	}
	if ok {
		return opErr("create", table, ErrTableExists)
	}
	if err := admin.CreateTable(ctx, desc); err != nil {
		return opErr("create", table, err)
	}
	c.opts.log.Infof("created table %s with families %v", table, desc.Families)
	return nil
}

// Describe returns the current descriptor of table.
func (c *ColumnStore) Describe(ctx context.Context, table string) (TableDescriptor, error) {
	admin, _, err := c.handles()
	if err != nil {
		return TableDescriptor{}, err
	}
	if err := c.guard(ctx, admin, "describe", table); err != nil {
		return TableDescriptor{}, err
	}
	desc, err := admin.TableDescriptor(ctx, table)
	if err != nil {
		return TableDescriptor{}, opErr("describe", table, err)
	}
	return desc, nil
}

// AddColumnFamilies adds families to table. The table is disabled for the
// change and enabled again afterwards, even when the change fails. Families
// already present are ignored. A table left disabled by an earlier failure is
// not disabled again, so retrying the call completes the change.
func (c *ColumnStore) AddColumnFamilies(ctx context.Context, table string, families ...string) error {
	admin, _, err := c.handles()
	if err != nil {
		return err
	}
	if len(families) == 0 {
		return opErr("add-family", table, ErrNoColumnFamilies)
	}
	defer c.beginMutation(table)()

	if err := c.guard(ctx, admin, "add-family", table); err != nil {
		return err
	}
	desc, err := admin.TableDescriptor(ctx, table)
	if err != nil {
		return &SchemaMutationError{Table: table, Step: StepDescribe, Err: err}
	}
	enabled, err := admin.IsTableEnabled(ctx, table)
	if err != nil {
		return &SchemaMutationError{Table: table, Step: StepDescribe, Err: err}
	}
	known := len(desc.Families)
	desc.AddFamilies(families...)
	added := desc.Families[known:]
	if len(added) == 0 && enabled {
		return nil
	}

	if enabled {
		c.opts.log.Infof("disabling table %s to add families %v", table, added)
		if err := admin.DisableTable(ctx, table); err != nil {
			return &SchemaMutationError{Table: table, Step: StepDisable, Err: err}
		}
	} else {
		c.opts.log.Infof("table %s is already disabled, adding families %v", table, added)
	}
	for _, family := range added {
		if err := admin.AddColumnFamily(ctx, table, Bytes(family)); err != nil {
			return c.enableAfter(ctx, admin, &SchemaMutationError{Table: table, Step: StepModify, Err: err})
		}
	}
	if err := admin.EnableTable(ctx, table); err != nil {
		c.opts.log.Warnf("table %s left disabled: %v", table, err)
		return &SchemaMutationError{Table: table, Step: StepEnable, Disabled: true, Err: err}
	}
	c.opts.log.Infof("table %s now has families %v", table, desc.Families)
	return nil
}

// enableAfter brings the table of a failed mutation back online and records
// in serr whether that worked.
func (c *ColumnStore) enableAfter(ctx context.Context, admin backend.Admin, serr *SchemaMutationError) error {
	if err := admin.EnableTable(ctx, serr.Table); err != nil {
		c.opts.log.Warnf("table %s left disabled: %v", serr.Table, err)
		serr.Disabled = true
		serr.Err = errors.Join(serr.Err, err)
	}
	return serr
}

// EnableTable brings a disabled table back online, typically one a failed
// schema change left disabled. Enabling an enabled table does nothing.
func (c *ColumnStore) EnableTable(ctx context.Context, table string) error {
	admin, _, err := c.handles()
	if err != nil {
		return err
	}
	defer c.beginMutation(table)()

	if err := c.guard(ctx, admin, "enable", table); err != nil {
		return err
	}
	enabled, err := admin.IsTableEnabled(ctx, table)
	if err != nil {
		return opErr("enable", table, err)
	}
	if enabled {
		return nil
	}
	if err := admin.EnableTable(ctx, table); err != nil {
		return &SchemaMutationError{Table: table, Step: StepEnable, Disabled: true, Err: err}
	}
	c.opts.log.Infof("enabled table %s", table)
	return nil
}

// DropColumnFamily removes family and all its cells from table. The table
// stays online.
func (c *ColumnStore) DropColumnFamily(ctx context.Context, table, family string) error {
	admin, _, err := c.handles()
	if err != nil {
		return err
	}
	defer c.beginMutation(table)()

	if err := c.guard(ctx, admin, "drop-family", table); err != nil {
		return err
	}
	if err := admin.DeleteColumnFamily(ctx, table, Bytes(family)); err != nil {
		return opErr("drop-family", table, err)
	}
	c.opts.log.Infof("dropped family %s from table %s", family, table)
	return nil
}

// DropTable disables table, unless it already is, and deletes it. It cannot
// be undone.
func (c *ColumnStore) DropTable(ctx context.Context, table string) error {
	admin, _, err := c.handles()
	if err != nil {
		return err
	}
	defer c.beginMutation(table)()

	if err := c.guard(ctx, admin, "drop", table); err != nil {
		return err
	}
	enabled, err := admin.IsTableEnabled(ctx, table)
	if err != nil {
		return &SchemaMutationError{Table: table, Step: StepDescribe, Err: err}
	}
	if enabled {
		if err := admin.DisableTable(ctx, table); err != nil {
			return &SchemaMutationError{Table: table, Step: StepDisable, Err: err}
		}
	}
	if err := admin.DeleteTable(ctx, table); err != nil {
		c.opts.log.Warnf("table %s disabled but not deleted: %v", table, err)
		return &SchemaMutationError{Table: table, Step: StepDelete, Disabled: true, Err: err}
	}
	c.opts.log.Infof("dropped table %s", table)
	return nil
}

// Put writes one cell, replacing the value at that coordinate.
func (c *ColumnStore) Put(ctx context.Context, table string, row, family, qualifier, value Bytes) error {
	return c.PutCells(ctx, table, row, Column{Family: family, Qualifier: qualifier, Value: value})
}

// PutCells writes several cells of one row in a single mutation.
func (c *ColumnStore) PutCells(ctx context.Context, table string, row Bytes, cols ...Column) error {
	if len(cols) == 0 {
		return nil
	}
	cells := make([]Cell, len(cols))
	for i, col := range cols {
		cells[i] = Cell{Row: row, Family: col.Family, Qualifier: col.Qualifier, Value: col.Value}
	}
	return c.withTable(ctx, "put", table, func(t backend.Table) error {
		return opErr("put", table, t.Put(ctx, row, cells))
	})
}

// DeleteRow deletes every cell of row.
func (c *ColumnStore) DeleteRow(ctx context.Context, table string, row Bytes) error {
	return c.withTable(ctx, "delete", table, func(t backend.Table) error {
		return opErr("delete", table, t.Delete(ctx, row))
	})
}

// DeleteRows deletes several rows. The batch is not atomic: rows that were
// deleted stay deleted and the rest are reported in a *PartialBatchError.
func (c *ColumnStore) DeleteRows(ctx context.Context, table string, rows ...Bytes) error {
	if len(rows) == 0 {
		return nil
	}
	return c.withTable(ctx, "delete", table, func(t backend.Table) error {
		if c.opts.batchPolicy == BatchFailFast {
			for i, row := range rows {
				if err := t.Delete(ctx, row); err != nil {
					c.opts.log.Warnf("delete of %s in %s failed, skipping %d rows: %v", row, table, len(rows)-i-1, err)
					return &PartialBatchError{Table: table, Failed: []Bytes{row}, Skipped: slices.Clone(rows[i+1:]), Err: err}
				}
			}
			return nil
		}
		failed, err := t.DeleteBatch(ctx, rows)
		if err != nil {
			return opErr("delete", table, err)
		}
		if len(failed) > 0 {
			c.opts.log.Warnf("%d of %d deletes in %s failed", len(failed), len(rows), table)
			return &PartialBatchError{Table: table, Failed: failed}
		}
		return nil
	})
}

// GetRow yields the cells of row. An absent row yields nothing. Ranging
// again re-reads the row.
func (c *ColumnStore) GetRow(ctx context.Context, table string, row Bytes) iter.Seq2[Cell, error] {
	return func(yield func(Cell, error) bool) {
		var cells []Cell
		err := c.withTable(ctx, "get", table, func(t backend.Table) (err error) {
			cells, err = t.Get(ctx, row)
			return opErr("get", table, err)
		})
		if err != nil {
			yield(Cell{}, err)
			return
		}
		for _, cell := range cells {
			if !yield(cell, nil) {
				return
			}
		}
	}
}

// ScanOption narrows a Scan.
type ScanOption func(*backend.ScanSpec)

// WithStartRow starts the scan at row, inclusive.
func WithStartRow(row Bytes) ScanOption {
	return func(s *backend.ScanSpec) { s.StartRow = row }
}

// WithStopRow ends the scan before row.
func WithStopRow(row Bytes) ScanOption {
	return func(s *backend.ScanSpec) { s.StopRow = row }
}

// WithPrefix restricts the scan to rows starting with prefix.
func WithPrefix(prefix Bytes) ScanOption {
	return func(s *backend.ScanSpec) {
		s.StartRow = prefix
		s.StopRow = utils.PrefixStopRow(prefix)
	}
}

// WithFamilies restricts the returned cells to families.
func WithFamilies(families ...string) ScanOption {
	return func(s *backend.ScanSpec) {
		for _, f := range families {
			s.Families = append(s.Families, Bytes(f))
		}
	}
}

// WithBatchSize sets the number of rows fetched per round trip.
func WithBatchSize(n int32) ScanOption {
	return func(s *backend.ScanSpec) {
		if n > 0 {
			s.Batch = n
		}
	}
}

// Scan yields the cells of every row of table in row key order. Rows are
// fetched from a server-side scanner in batches; the scanner and the table
// handle are released when the loop ends, including on break.
func (c *ColumnStore) Scan(ctx context.Context, table string, opts ...ScanOption) iter.Seq2[Cell, error] {
	spec := backend.ScanSpec{Batch: c.opts.scanBatch}
	for _, opt := range opts {
		opt(&spec)
	}
	return func(yield func(Cell, error) bool) {
		t, err := c.acquire(ctx, "scan", table)
		if err != nil {
			yield(Cell{}, err)
			return
		}
		defer t.Close()

		sc, err := t.Scan(ctx, spec)
		if err != nil {
			yield(Cell{}, opErr("scan", table, err))
			return
		}
		defer sc.Close()

		for {
			if err := ctx.Err(); err != nil {
				yield(Cell{}, opErr("scan", table, err))
				return
			}
			cells, err := sc.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Cell{}, opErr("scan", table, err))
				return
			}
			for _, cell := range cells {
				if !yield(cell, nil) {
					return
				}
			}
		}
	}
}

// Append appends value to the cell at (row, family, qualifier) on the server,
// creating it when absent, and returns the resulting cell. A response without
// that cell is an error, since the stored value is then unknown.
func (c *ColumnStore) Append(ctx context.Context, table string, row, family, qualifier, value Bytes) (Cell, error) {
	var out Cell
	err := c.withTable(ctx, "append", table, func(t backend.Table) error {
		cells, err := t.Append(ctx, row, []Cell{{Row: row, Family: family, Qualifier: qualifier, Value: value}})
		if err != nil {
			return opErr("append", table, err)
		}
		for _, cell := range cells {
			if bytes.Equal(cell.Family, family) && bytes.Equal(cell.Qualifier, qualifier) {
				out = cell
				return nil
			}
		}
		return opErr("append", table, fmt.Errorf("result has no cell %s:%s", family, qualifier))
	})
	return out, err
}
