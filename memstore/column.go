package memstore

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/challenai/hdao/backend"
	"github.com/challenai/hdao/utils"
)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("memstore: connection is closed")

type memTable struct {
	desc    backend.TableDescriptor
	enabled bool
	// rows maps row key -> family -> qualifier -> cell.
	rows map[string]map[string]map[string]backend.Cell
}

// ColumnStore is an in-memory column-family store implementing
// backend.Connection.
type ColumnStore struct {
	faults

	mu         sync.Mutex
	tables     map[string]*memTable
	ts         int64
	closed     bool
	failDelete map[string]map[string]bool

	handles  counter
	scanners counter
}

var _ backend.Connection = (*ColumnStore)(nil)

func NewColumnStore() *ColumnStore {
	return &ColumnStore{
		tables:     map[string]*memTable{},
		failDelete: map[string]map[string]bool{},
	}
}

// FailDelete makes every delete of row in table fail as if the region server
// rejected it.
func (s *ColumnStore) FailDelete(table string, row backend.Bytes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[table] == nil {
		s.failDelete[table] = map[string]bool{}
	}
	s.failDelete[table][string(row)] = true
}

// OpenHandles returns the number of table handles not yet closed.
func (s *ColumnStore) OpenHandles() int { return s.handles.get() }

// OpenScanners returns the number of scanners not yet closed.
func (s *ColumnStore) OpenScanners() int { return s.scanners.get() }

// IsEnabled reports the table state, false for absent tables.
func (s *ColumnStore) IsEnabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	return ok && t.enabled
}

func (s *ColumnStore) Admin(ctx context.Context) (backend.Admin, error) {
	if err := s.take("admin"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return &memAdmin{s: s}, nil
}

func (s *ColumnStore) Table(ctx context.Context, name string) (backend.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.handles.inc()
	return &memTableHandle{s: s, name: name}, nil
}

func (s *ColumnStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *ColumnStore) nextTS() int64 {
	s.ts++
	return s.ts
}

// lookup returns a table usable for data operations. Callers hold s.mu.
func (s *ColumnStore) lookup(name string) (*memTable, error) {
	if s.closed {
		return nil, ErrClosed
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, errorf("TableNotFoundException", "%s", name)
	}
	if !t.enabled {
		return nil, errorf("TableNotEnabledException", "%s is disabled", name)
	}
	return t, nil
}

type memAdmin struct {
	s *ColumnStore
}

func (a *memAdmin) TableExists(ctx context.Context, name string) (bool, error) {
	if err := a.s.take("tableExists"); err != nil {
		return false, err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.closed {
		return false, ErrClosed
	}
	_, ok := a.s.tables[name]
	return ok, nil
}

func (a *memAdmin) ListTables(ctx context.Context) ([]string, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.closed {
		return nil, ErrClosed
	}
	names := make([]string, 0, len(a.s.tables))
	for n := range a.s.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (a *memAdmin) CreateTable(ctx context.Context, desc backend.TableDescriptor) error {
	if err := a.s.take("createTable"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.s.closed {
		return ErrClosed
	}
	if _, ok := a.s.tables[desc.Name]; ok {
		return errorf("TableExistsException", "%s", desc.Name)
	}
	if len(desc.Families) == 0 {
		return errorf("IllegalArgumentException", "table %s must have at least one column family", desc.Name)
	}
	a.s.tables[desc.Name] = &memTable{
		desc:    desc.Clone(),
		enabled: true,
		rows:    map[string]map[string]map[string]backend.Cell{},
	}
	return nil
}

func (a *memAdmin) table(name string) (*memTable, error) {
	if a.s.closed {
		return nil, ErrClosed
	}
	t, ok := a.s.tables[name]
	if !ok {
		return nil, errorf("TableNotFoundException", "%s", name)
	}
	return t, nil
}

func (a *memAdmin) TableDescriptor(ctx context.Context, name string) (backend.TableDescriptor, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(name)
	if err != nil {
		return backend.TableDescriptor{}, err
	}
	return t.desc.Clone(), nil
}

func (a *memAdmin) AddColumnFamily(ctx context.Context, table string, family backend.Bytes) error {
	if err := a.s.take("addColumnFamily"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(table)
	if err != nil {
		return err
	}
	if t.enabled {
		return errorf("TableNotDisabledException", "%s must be disabled to modify its schema", table)
	}
	if t.desc.HasFamily(string(family)) {
		return errorf("InvalidFamilyOperationException", "family %s already exists in %s", family, table)
	}
	t.desc.AddFamilies(string(family))
	return nil
}

func dropFamily(t *memTable, family string) {
	for key, fams := range t.rows {
		delete(fams, family)
		if len(fams) == 0 {
			delete(t.rows, key)
		}
	}
}

func (a *memAdmin) DisableTable(ctx context.Context, name string) error {
	if err := a.s.take("disableTable"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(name)
	if err != nil {
		return err
	}
	if !t.enabled {
		return errorf("TableNotEnabledException", "%s", name)
	}
	t.enabled = false
	return nil
}

func (a *memAdmin) EnableTable(ctx context.Context, name string) error {
	if err := a.s.take("enableTable"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(name)
	if err != nil {
		return err
	}
	if t.enabled {
		return errorf("TableNotDisabledException", "%s", name)
	}
	t.enabled = true
	return nil
}

func (a *memAdmin) IsTableEnabled(ctx context.Context, name string) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(name)
	if err != nil {
		return false, err
	}
	return t.enabled, nil
}

func (a *memAdmin) DeleteTable(ctx context.Context, name string) error {
	if err := a.s.take("deleteTable"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(name)
	if err != nil {
		return err
	}
	if t.enabled {
		return errorf("TableNotDisabledException", "%s must be disabled before delete", name)
	}
	delete(a.s.tables, name)
	return nil
}

func (a *memAdmin) DeleteColumnFamily(ctx context.Context, table string, family backend.Bytes) error {
	if err := a.s.take("deleteColumnFamily"); err != nil {
		return err
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	t, err := a.table(table)
	if err != nil {
		return err
	}
	if !t.desc.HasFamily(string(family)) {
		return errorf("InvalidFamilyOperationException", "family %s does not exist in %s", family, table)
	}
	if len(t.desc.Families) == 1 {
		return errorf("InvalidFamilyOperationException", "family %s is the only family of %s", family, table)
	}
	t.desc.RemoveFamily(string(family))
	dropFamily(t, string(family))
	return nil
}

func (a *memAdmin) Close() error { return nil }

type memTableHandle struct {
	s      *ColumnStore
	name   string
	closed bool
}

func (h *memTableHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.s.handles.dec()
	return nil
}

func (h *memTableHandle) check(op string) error {
	if h.closed {
		return errors.New("memstore: table handle is closed")
	}
	return h.s.take(op)
}

func (h *memTableHandle) Put(ctx context.Context, row backend.Bytes, cells []backend.Cell) error {
	if err := h.check("put"); err != nil {
		return err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if !t.desc.HasFamily(string(c.Family)) {
			return errorf("NoSuchColumnFamilyException", "family %s does not exist in %s", c.Family, h.name)
		}
	}
	ts := h.s.nextTS()
	for _, c := range cells {
		if c.Timestamp == 0 {
			c.Timestamp = ts
		}
		setCell(t, row, c)
	}
	return nil
}

func setCell(t *memTable, row backend.Bytes, c backend.Cell) {
	fams, ok := t.rows[string(row)]
	if !ok {
		fams = map[string]map[string]backend.Cell{}
		t.rows[string(row)] = fams
	}
	quals, ok := fams[string(c.Family)]
	if !ok {
		quals = map[string]backend.Cell{}
		fams[string(c.Family)] = quals
	}
	quals[string(c.Qualifier)] = backend.Cell{
		Row:       row.Clone(),
		Family:    c.Family.Clone(),
		Qualifier: c.Qualifier.Clone(),
		Value:     c.Value.Clone(),
		Timestamp: c.Timestamp,
	}
}

func (h *memTableHandle) Delete(ctx context.Context, row backend.Bytes) error {
	if err := h.check("delete"); err != nil {
		return err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return err
	}
	if h.s.failDelete[h.name][string(row)] {
		return errorf("IOException", "delete of row %s rejected", row)
	}
	delete(t.rows, string(row))
	return nil
}

func (h *memTableHandle) DeleteBatch(ctx context.Context, rows []backend.Bytes) ([]backend.Bytes, error) {
	if err := h.check("deleteBatch"); err != nil {
		return nil, err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return nil, err
	}
	var failed []backend.Bytes
	for _, row := range rows {
		if h.s.failDelete[h.name][string(row)] {
			failed = append(failed, row)
			continue
		}
		delete(t.rows, string(row))
	}
	return failed, nil
}

func rowCells(fams map[string]map[string]backend.Cell, families []backend.Bytes) []backend.Cell {
	var cells []backend.Cell
	for fam, quals := range fams {
		if len(families) > 0 && !containsFamily(families, fam) {
			continue
		}
		for _, c := range quals {
			cells = append(cells, backend.Cell{
				Row:       c.Row.Clone(),
				Family:    c.Family.Clone(),
				Qualifier: c.Qualifier.Clone(),
				Value:     c.Value.Clone(),
				Timestamp: c.Timestamp,
			})
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if f := string(cells[i].Family); f != string(cells[j].Family) {
			return f < string(cells[j].Family)
		}
		return string(cells[i].Qualifier) < string(cells[j].Qualifier)
	})
	return cells
}

func containsFamily(families []backend.Bytes, fam string) bool {
	for _, f := range families {
		if string(f) == fam {
			return true
		}
	}
	return false
}

func (h *memTableHandle) Get(ctx context.Context, row backend.Bytes) ([]backend.Cell, error) {
	if err := h.check("get"); err != nil {
		return nil, err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return nil, err
	}
	return rowCells(t.rows[string(row)], nil), nil
}

func (h *memTableHandle) Append(ctx context.Context, row backend.Bytes, cells []backend.Cell) ([]backend.Cell, error) {
	if err := h.check("append"); err != nil {
		return nil, err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return nil, err
	}
	for _, c := range cells {
		if !t.desc.HasFamily(string(c.Family)) {
			return nil, errorf("NoSuchColumnFamilyException", "family %s does not exist in %s", c.Family, h.name)
		}
	}
	ts := h.s.nextTS()
	out := make([]backend.Cell, 0, len(cells))
	for _, c := range cells {
		var prev backend.Bytes
		if fams, ok := t.rows[string(row)]; ok {
			if old, ok := fams[string(c.Family)][string(c.Qualifier)]; ok {
				prev = old.Value
			}
		}
		merged := backend.Cell{
			Row:       row,
			Family:    c.Family,
			Qualifier: c.Qualifier,
			Value:     append(prev.Clone(), c.Value...),
			Timestamp: ts,
		}
		setCell(t, row, merged)
		out = append(out, merged)
	}
	return out, nil
}

func (h *memTableHandle) Scan(ctx context.Context, spec backend.ScanSpec) (backend.Scanner, error) {
	if err := h.check("scan"); err != nil {
		return nil, err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	t, err := h.s.lookup(h.name)
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range t.rows {
		if utils.InRange([]byte(k), spec.StartRow, spec.StopRow) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	h.s.scanners.inc()
	return &memScanner{s: h.s, table: h.name, keys: keys, families: spec.Families}, nil
}

type memScanner struct {
	s        *ColumnStore
	table    string
	keys     []string
	families []backend.Bytes
	closed   bool
}

// Next returns rows in key order, skipping rows deleted since the scan was
// opened.
func (m *memScanner) Next(ctx context.Context) ([]backend.Cell, error) {
	if m.closed {
		return nil, errors.New("memstore: scanner is closed")
	}
	if err := m.s.take("scanNext"); err != nil {
		return nil, err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, err := m.s.lookup(m.table)
	if err != nil {
		return nil, err
	}
	for len(m.keys) > 0 {
		k := m.keys[0]
		m.keys = m.keys[1:]
		if cells := rowCells(t.rows[k], m.families); len(cells) > 0 {
			return cells, nil
		}
	}
	return nil, io.EOF
}

func (m *memScanner) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.s.scanners.dec()
	return nil
}
