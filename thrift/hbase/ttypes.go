// Package hbase holds the HBase Thrift2 (THBaseService) types and client for
// the calls hdao issues. Field ids follow hbase-thrift's hbase.thrift.
package hbase

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// TColumn addresses a family, or a single family:qualifier column.
type TColumn struct {
	Family    []byte
	Qualifier []byte
	Timestamp *int64
}

func (c *TColumn) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TColumn", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			c.Family, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			c.Qualifier, err = p.ReadBinary(ctx)
		case id == 3 && t == thrift.I64:
			c.Timestamp, err = readI64Ptr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (c *TColumn) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TColumn",
		binaryField("family", 1, c.Family, true),
		binaryField("qualifier", 2, c.Qualifier, false),
		i64Field("timestamp", 3, c.Timestamp),
	)
}

// TColumnValue is one cell of a put, append or result.
type TColumnValue struct {
	Family    []byte
	Qualifier []byte
	Value     []byte
	Timestamp *int64
}

func (c *TColumnValue) GetTimestamp() int64 {
	if c.Timestamp == nil {
		return 0
	}
	return *c.Timestamp
}

func (c *TColumnValue) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TColumnValue", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			c.Family, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			c.Qualifier, err = p.ReadBinary(ctx)
		case id == 3 && t == thrift.STRING:
			c.Value, err = p.ReadBinary(ctx)
		case id == 4 && t == thrift.I64:
			c.Timestamp, err = readI64Ptr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (c *TColumnValue) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TColumnValue",
		binaryField("family", 1, c.Family, true),
		binaryField("qualifier", 2, c.Qualifier, true),
		binaryField("value", 3, c.Value, true),
		i64Field("timestamp", 4, c.Timestamp),
	)
}

func readColumnValues(ctx context.Context, p thrift.TProtocol) ([]*TColumnValue, error) {
	var out []*TColumnValue
	err := readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
		cv := &TColumnValue{}
		if err := cv.Read(ctx, p); err != nil {
			return err
		}
		out = append(out, cv)
		return nil
	})
	return out, err
}

func columnValuesField(name string, id int16, cvs []*TColumnValue, required bool) fieldWriter {
	return listField(name, id, thrift.STRUCT, len(cvs), required || cvs != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return cvs[i].Write(ctx, p)
	})
}

func columnsField(name string, id int16, cols []*TColumn) fieldWriter {
	return listField(name, id, thrift.STRUCT, len(cols), cols != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return cols[i].Write(ctx, p)
	})
}

func readColumns(ctx context.Context, p thrift.TProtocol) ([]*TColumn, error) {
	var out []*TColumn
	err := readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
		c := &TColumn{}
		if err := c.Read(ctx, p); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// TResult_ is the content of one row. An empty ColumnValues means the row
// does not exist.
type TResult_ struct {
	Row          []byte
	ColumnValues []*TColumnValue
}

func (r *TResult_) GetRow() []byte {
	if r == nil {
		return nil
	}
	return r.Row
}

func (r *TResult_) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			r.Row, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			r.ColumnValues, err = readColumnValues(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (r *TResult_) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TResult",
		binaryField("row", 1, r.Row, false),
		columnValuesField("columnValues", 2, r.ColumnValues, true),
	)
}

func readResults(ctx context.Context, p thrift.TProtocol) ([]*TResult_, error) {
	var out []*TResult_
	err := readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
		r := &TResult_{}
		if err := r.Read(ctx, p); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

// TGet reads a single row, optionally restricted to some columns.
type TGet struct {
	Row     []byte
	Columns []*TColumn
}

func (g *TGet) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TGet", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			g.Row, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			g.Columns, err = readColumns(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (g *TGet) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TGet",
		binaryField("row", 1, g.Row, true),
		columnsField("columns", 2, g.Columns),
	)
}

// TPut writes cells of one row.
type TPut struct {
	Row          []byte
	ColumnValues []*TColumnValue
}

func (u *TPut) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TPut", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			u.Row, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			u.ColumnValues, err = readColumnValues(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (u *TPut) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TPut",
		binaryField("row", 1, u.Row, true),
		columnValuesField("columnValues", 2, u.ColumnValues, true),
	)
}

// TDelete removes a whole row when Columns is nil.
type TDelete struct {
	Row     []byte
	Columns []*TColumn
}

func (d *TDelete) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TDelete", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			d.Row, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			d.Columns, err = readColumns(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (d *TDelete) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TDelete",
		binaryField("row", 1, d.Row, true),
		columnsField("columns", 2, d.Columns),
	)
}

func readDeletes(ctx context.Context, p thrift.TProtocol) ([]*TDelete, error) {
	var out []*TDelete
	err := readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
		d := &TDelete{}
		if err := d.Read(ctx, p); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func deletesField(name string, id int16, ds []*TDelete) fieldWriter {
	return listField(name, id, thrift.STRUCT, len(ds), true, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return ds[i].Write(ctx, p)
	})
}

// TAppend appends to the values of the given cells.
type TAppend struct {
	Row           []byte
	Columns       []*TColumnValue
	ReturnResults *bool
}

func (a *TAppend) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TAppend", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.Row, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			a.Columns, err = readColumnValues(ctx, p)
		case id == 6 && t == thrift.BOOL:
			a.ReturnResults, err = readBoolPtr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (a *TAppend) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TAppend",
		binaryField("row", 1, a.Row, true),
		columnValuesField("columns", 2, a.Columns, true),
		boolField("returnResults", 6, a.ReturnResults),
	)
}

// TScan opens a range scan. StopRow is exclusive.
type TScan struct {
	StartRow []byte
	StopRow  []byte
	Columns  []*TColumn
	Caching  *int32
}

func (s *TScan) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TScan", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			s.StartRow, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			s.StopRow, err = p.ReadBinary(ctx)
		case id == 3 && t == thrift.LIST:
			s.Columns, err = readColumns(ctx, p)
		case id == 4 && t == thrift.I32:
			s.Caching, err = readI32Ptr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (s *TScan) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TScan",
		binaryField("startRow", 1, s.StartRow, false),
		binaryField("stopRow", 2, s.StopRow, false),
		columnsField("columns", 3, s.Columns),
		i32Field("caching", 4, s.Caching),
	)
}

// TTableName is a namespace qualified table name.
type TTableName struct {
	Ns        []byte
	Qualifier []byte
}

func (n *TTableName) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TTableName", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			n.Ns, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.STRING:
			n.Qualifier, err = p.ReadBinary(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (n *TTableName) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TTableName",
		binaryField("ns", 1, n.Ns, false),
		binaryField("qualifier", 2, n.Qualifier, true),
	)
}

func readTableNames(ctx context.Context, p thrift.TProtocol) ([]*TTableName, error) {
	var out []*TTableName
	err := readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
		n := &TTableName{}
		if err := n.Read(ctx, p); err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// TColumnFamilyDescriptor describes one column family.
type TColumnFamilyDescriptor struct {
	Name []byte
}

func (f *TColumnFamilyDescriptor) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TColumnFamilyDescriptor", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id != 1 || t != thrift.STRING {
			return false, nil
		}
		var err error
		f.Name, err = p.ReadBinary(ctx)
		return true, err
	})
}

func (f *TColumnFamilyDescriptor) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TColumnFamilyDescriptor",
		binaryField("name", 1, f.Name, true),
	)
}

// TTableDescriptor describes a table and its families.
type TTableDescriptor struct {
	TableName *TTableName
	Columns   []*TColumnFamilyDescriptor
}

func (d *TTableDescriptor) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TTableDescriptor", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.STRUCT:
			d.TableName = &TTableName{}
			return true, d.TableName.Read(ctx, p)
		case id == 2 && t == thrift.LIST:
			d.Columns = nil
			return true, readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
				f := &TColumnFamilyDescriptor{}
				if err := f.Read(ctx, p); err != nil {
					return err
				}
				d.Columns = append(d.Columns, f)
				return nil
			})
		}
		return false, nil
	})
}

func (d *TTableDescriptor) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TTableDescriptor",
		structField("tableName", 1, d.TableName, d.TableName != nil),
		listField("columns", 2, thrift.STRUCT, len(d.Columns), d.Columns != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
			return d.Columns[i].Write(ctx, p)
		}),
	)
}

// TIOError is raised for any failure inside the region server or master.
type TIOError struct {
	Message  *string
	CanRetry *bool
}

func (e *TIOError) GetMessage() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

func (e *TIOError) Error() string {
	return fmt.Sprintf("TIOError(%s)", e.GetMessage())
}

func (e *TIOError) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TIOError", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			e.Message, err = readStringPtr(ctx, p)
		case id == 2 && t == thrift.BOOL:
			e.CanRetry, err = readBoolPtr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (e *TIOError) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TIOError",
		stringField("message", 1, e.Message),
		boolField("canRetry", 2, e.CanRetry),
	)
}

// TIllegalArgument is raised for invalid requests, e.g. an expired scanner id.
type TIllegalArgument struct {
	Message *string
}

func (e *TIllegalArgument) GetMessage() string {
	if e.Message == nil {
		return ""
	}
	return *e.Message
}

func (e *TIllegalArgument) Error() string {
	return fmt.Sprintf("TIllegalArgument(%s)", e.GetMessage())
}

func (e *TIllegalArgument) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TIllegalArgument", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id != 1 || t != thrift.STRING {
			return false, nil
		}
		var err error
		e.Message, err = readStringPtr(ctx, p)
		return true, err
	})
}

func (e *TIllegalArgument) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TIllegalArgument",
		stringField("message", 1, e.Message),
	)
}
