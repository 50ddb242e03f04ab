package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/challenai/hdao/backend"
	"github.com/challenai/hdao/thrift/hbase"
	"github.com/challenai/hdao/utils"
)

// DefaultScanBatch is the number of rows fetched per getScannerRows call.
const DefaultScanBatch int32 = 1 << 6

var errConnClosed = errors.New("hbase connection is closed")

// HBaseOptions configures DialHBase.
type HBaseOptions struct {
	// Addresses lists Thrift2 gateway URLs, tried in order.
	Addresses []string
	Headers   []Header
	Timeout   time.Duration
}

// HBaseConn implements backend.Connection on the HBase Thrift2 gateway.
// Calls are serialized because the HTTP transport is not goroutine-safe.
type HBaseConn struct {
	mu    sync.Mutex
	svc   *hbase.THBaseServiceClient
	trans thrift.TTransport
}

var _ backend.Connection = (*HBaseConn)(nil)

// NewHBaseConn wraps an already built thrift client. trans may be nil.
func NewHBaseConn(c thrift.TClient, trans thrift.TTransport) *HBaseConn {
	return &HBaseConn{svc: hbase.NewTHBaseServiceClient(c), trans: trans}
}

// DialHBase connects to the first gateway in opts.Addresses that answers a
// tableExists probe on hbase:meta.
func DialHBase(ctx context.Context, opts HBaseOptions) (*HBaseConn, error) {
	if len(opts.Addresses) == 0 {
		return nil, errors.New("no hbase thrift address configured")
	}
	var errs []error
	for _, addr := range opts.Addresses {
		svc, trans, err := NewHBaseClient(addr, opts.Headers, opts.Timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		conn := &HBaseConn{svc: svc, trans: trans}
		if err := conn.ping(ctx); err != nil {
			_ = trans.Close()
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return conn, nil
	}
	return nil, errors.Join(errs...)
}

func (c *HBaseConn) ping(ctx context.Context) error {
	return c.do(func(svc *hbase.THBaseServiceClient) error {
		_, err := svc.TableExists(ctx, toTTableName("hbase:meta"))
		return err
	})
}

func (c *HBaseConn) do(fn func(svc *hbase.THBaseServiceClient) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return errConnClosed
	}
	return fn(c.svc)
}

func (c *HBaseConn) Admin(ctx context.Context) (backend.Admin, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return nil, errConnClosed
	}
	return &hbaseAdmin{conn: c}, nil
}

func (c *HBaseConn) Table(ctx context.Context, name string) (backend.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return nil, errConnClosed
	}
	ns, tbl := backend.SplitTableName(name)
	return &hbaseTable{conn: c, name: []byte(ns + ":" + tbl)}, nil
}

func (c *HBaseConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc == nil {
		return nil
	}
	c.svc = nil
	if c.trans != nil {
		return c.trans.Close()
	}
	return nil
}

func toTTableName(name string) *hbase.TTableName {
	ns, tbl := backend.SplitTableName(name)
	return &hbase.TTableName{Ns: []byte(ns), Qualifier: []byte(tbl)}
}

func fromTTableName(n *hbase.TTableName) string {
	return backend.JoinTableName(string(n.Ns), string(n.Qualifier))
}

func toCells(r *hbase.TResult_) []backend.Cell {
	if r == nil || len(r.ColumnValues) == 0 {
		return nil
	}
	cells := make([]backend.Cell, 0, len(r.ColumnValues))
	for _, cv := range r.ColumnValues {
		cells = append(cells, backend.Cell{
			Row:       r.Row,
			Family:    cv.Family,
			Qualifier: cv.Qualifier,
			Value:     cv.Value,
			Timestamp: cv.GetTimestamp(),
		})
	}
	return cells
}

func toColumnValues(cells []backend.Cell) []*hbase.TColumnValue {
	cvs := make([]*hbase.TColumnValue, 0, len(cells))
	for _, c := range cells {
		cv := &hbase.TColumnValue{
			Family:    c.Family,
			Qualifier: c.Qualifier,
			Value:     c.Value,
		}
		if c.Timestamp != 0 {
			ts := c.Timestamp
			cv.Timestamp = &ts
		}
		cvs = append(cvs, cv)
	}
	return cvs
}

type hbaseAdmin struct {
	conn *HBaseConn
}

func (a *hbaseAdmin) TableExists(ctx context.Context, name string) (ok bool, err error) {
	err = a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		ok, err = svc.TableExists(ctx, toTTableName(name))
		return err
	})
	return ok, err
}

func (a *hbaseAdmin) ListTables(ctx context.Context) ([]string, error) {
	var names []*hbase.TTableName
	err := a.conn.do(func(svc *hbase.THBaseServiceClient) (err error) {
		names, err = svc.GetTableNamesByPattern(ctx, nil, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, fromTTableName(n))
	}
	return out, nil
}

func (a *hbaseAdmin) CreateTable(ctx context.Context, desc backend.TableDescriptor) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.CreateTable(ctx, toTTableDescriptor(desc), nil)
	})
}

func (a *hbaseAdmin) TableDescriptor(ctx context.Context, name string) (backend.TableDescriptor, error) {
	var d *hbase.TTableDescriptor
	err := a.conn.do(func(svc *hbase.THBaseServiceClient) (err error) {
		d, err = svc.GetTableDescriptor(ctx, toTTableName(name))
		return err
	})
	if err != nil {
		return backend.TableDescriptor{}, err
	}
	desc := backend.TableDescriptor{Name: name}
	for _, f := range d.Columns {
		desc.AddFamilies(string(f.Name))
	}
	return desc, nil
}

func toTTableDescriptor(desc backend.TableDescriptor) *hbase.TTableDescriptor {
	d := &hbase.TTableDescriptor{TableName: toTTableName(desc.Name)}
	for _, f := range desc.Families {
		d.Columns = append(d.Columns, &hbase.TColumnFamilyDescriptor{Name: []byte(f)})
	}
	return d
}

func (a *hbaseAdmin) AddColumnFamily(ctx context.Context, table string, family backend.Bytes) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.AddColumnFamily(ctx, toTTableName(table), &hbase.TColumnFamilyDescriptor{Name: family})
	})
}

func (a *hbaseAdmin) DisableTable(ctx context.Context, name string) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.DisableTable(ctx, toTTableName(name))
	})
}

func (a *hbaseAdmin) EnableTable(ctx context.Context, name string) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.EnableTable(ctx, toTTableName(name))
	})
}

func (a *hbaseAdmin) IsTableEnabled(ctx context.Context, name string) (ok bool, err error) {
	err = a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		ok, err = svc.IsTableEnabled(ctx, toTTableName(name))
		return err
	})
	return ok, err
}

func (a *hbaseAdmin) DeleteTable(ctx context.Context, name string) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.DeleteTable(ctx, toTTableName(name))
	})
}

func (a *hbaseAdmin) DeleteColumnFamily(ctx context.Context, table string, family backend.Bytes) error {
	return a.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.DeleteColumnFamily(ctx, toTTableName(table), family)
	})
}

// Close is a no-op: the admin shares the connection transport.
func (a *hbaseAdmin) Close() error {
	return nil
}

type hbaseTable struct {
	conn   *HBaseConn
	name   []byte
	closed bool
}

func (t *hbaseTable) do(fn func(svc *hbase.THBaseServiceClient) error) error {
	if t.closed {
		return fmt.Errorf("table %s: handle is closed", t.name)
	}
	return t.conn.do(fn)
}

func (t *hbaseTable) Put(ctx context.Context, row backend.Bytes, cells []backend.Cell) error {
	return t.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.Put(ctx, t.name, &hbase.TPut{Row: row, ColumnValues: toColumnValues(cells)})
	})
}

func (t *hbaseTable) Delete(ctx context.Context, row backend.Bytes) error {
	return t.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.DeleteSingle(ctx, t.name, &hbase.TDelete{Row: row})
	})
}

func (t *hbaseTable) DeleteBatch(ctx context.Context, rows []backend.Bytes) ([]backend.Bytes, error) {
	deletes := make([]*hbase.TDelete, 0, len(rows))
	for _, r := range rows {
		deletes = append(deletes, &hbase.TDelete{Row: r})
	}
	var failed []*hbase.TDelete
	err := t.do(func(svc *hbase.THBaseServiceClient) (err error) {
		failed, err = svc.DeleteMultiple(ctx, t.name, deletes)
		return err
	})
	if err != nil {
		return nil, err
	}
	keys := make([]backend.Bytes, 0, len(failed))
	for _, d := range failed {
		keys = append(keys, d.Row)
	}
	return keys, nil
}

func (t *hbaseTable) Get(ctx context.Context, row backend.Bytes) ([]backend.Cell, error) {
	var r *hbase.TResult_
	err := t.do(func(svc *hbase.THBaseServiceClient) (err error) {
		r, err = svc.Get(ctx, t.name, &hbase.TGet{Row: row})
		return err
	})
	if err != nil {
		return nil, err
	}
	cells := toCells(r)
	for i := range cells {
		if cells[i].Row == nil {
			cells[i].Row = row
		}
	}
	return cells, nil
}

func (t *hbaseTable) Append(ctx context.Context, row backend.Bytes, cells []backend.Cell) ([]backend.Cell, error) {
	returnResults := true
	var r *hbase.TResult_
	err := t.do(func(svc *hbase.THBaseServiceClient) (err error) {
		r, err = svc.Append(ctx, t.name, &hbase.TAppend{
			Row:           row,
			Columns:       toColumnValues(cells),
			ReturnResults: &returnResults,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toCells(r)
	for i := range out {
		if out[i].Row == nil {
			out[i].Row = row
		}
	}
	return out, nil
}

func (t *hbaseTable) Scan(ctx context.Context, spec backend.ScanSpec) (backend.Scanner, error) {
	batch := spec.Batch
	if batch <= 0 {
		batch = DefaultScanBatch
	}
	tscan := &hbase.TScan{
		StartRow: spec.StartRow,
		StopRow:  spec.StopRow,
		Caching:  &batch,
	}
	for _, f := range spec.Families {
		tscan.Columns = append(tscan.Columns, &hbase.TColumn{Family: f})
	}
	s := &hbaseScanner{table: t, scan: tscan, batch: batch}
	if err := s.open(ctx, spec.StartRow); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the handle. Further calls on it fail.
func (t *hbaseTable) Close() error {
	t.closed = true
	return nil
}

type hbaseScanner struct {
	table  *hbaseTable
	scan   *hbase.TScan
	batch  int32
	id     int32
	opened bool
	done   bool
	buf    []*hbase.TResult_
	last   []byte
}

func (s *hbaseScanner) open(ctx context.Context, start []byte) error {
	s.scan.StartRow = start
	return s.table.do(func(svc *hbase.THBaseServiceClient) (err error) {
		s.id, err = svc.OpenScanner(ctx, s.table.name, s.scan)
		s.opened = err == nil
		return err
	})
}

func (s *hbaseScanner) fetch(ctx context.Context) ([]*hbase.TResult_, error) {
	var rows []*hbase.TResult_
	err := s.table.do(func(svc *hbase.THBaseServiceClient) (err error) {
		rows, err = svc.GetScannerRows(ctx, s.id, s.batch)
		return err
	})
	return rows, err
}

// Next returns the next row. A scanner lease that expired on the server is
// reopened right after the last row returned.
func (s *hbaseScanner) Next(ctx context.Context) ([]backend.Cell, error) {
	for len(s.buf) == 0 {
		if s.done || !s.opened {
			return nil, io.EOF
		}
		rows, err := s.fetch(ctx)
		if err != nil && scannerExpired(err) && s.last != nil {
			s.opened = false
			if err := s.open(ctx, utils.ClosestRowAfter(s.last)); err != nil {
				return nil, err
			}
			rows, err = s.fetch(ctx)
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			s.done = true
			return nil, io.EOF
		}
		s.buf = rows
	}
	r := s.buf[0]
	s.buf = s.buf[1:]
	s.last = r.Row
	return toCells(r), nil
}

func (s *hbaseScanner) Close() error {
	if !s.opened {
		return nil
	}
	s.opened = false
	s.buf = nil
	return s.table.conn.do(func(svc *hbase.THBaseServiceClient) error {
		return svc.CloseScanner(context.Background(), s.id)
	})
}

func scannerExpired(err error) bool {
	var ia *hbase.TIllegalArgument
	return errors.As(err, &ia) && strings.Contains(ia.GetMessage(), "Invalid scanner Id")
}
